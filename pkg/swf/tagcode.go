package swf

import "fmt"

// TagCode identifies a tag type. Values are the on-disk codes.
type TagCode uint16

// Tag codes known to the dispatcher. Definition codes without a decoder are
// retained in the dictionary as [RawDef]; any other unknown code stays on the
// timeline as an opaque [Tag], never treated as a failure.
const (
	TagEnd                          TagCode = 0
	TagShowFrame                    TagCode = 1
	TagDefineShape                  TagCode = 2
	TagPlaceObject                  TagCode = 4
	TagRemoveObject                 TagCode = 5
	TagDefineBits                   TagCode = 6
	TagDefineButton                 TagCode = 7
	TagJPEGTables                   TagCode = 8
	TagSetBackgroundColor           TagCode = 9
	TagDefineFont                   TagCode = 10
	TagDefineText                   TagCode = 11
	TagDoAction                     TagCode = 12
	TagDefineSound                  TagCode = 14
	TagDefineBitsLossless           TagCode = 20
	TagDefineBitsJPEG2              TagCode = 21
	TagDefineShape2                 TagCode = 22
	TagPlaceObject2                 TagCode = 26
	TagRemoveObject2                TagCode = 28
	TagDefineShape3                 TagCode = 32
	TagDefineText2                  TagCode = 33
	TagDefineButton2                TagCode = 34
	TagDefineBitsJPEG3              TagCode = 35
	TagDefineBitsLossless2          TagCode = 36
	TagDefineEditText               TagCode = 37
	TagDefineSprite                 TagCode = 39
	TagFrameLabel                   TagCode = 43
	TagDefineMorphShape             TagCode = 46
	TagDefineFont2                  TagCode = 48
	TagExportAssets                 TagCode = 56
	TagDoInitAction                 TagCode = 59
	TagDefineVideoStream            TagCode = 60
	TagFileAttributes               TagCode = 69
	TagPlaceObject3                 TagCode = 70
	TagDefineFont3                  TagCode = 75
	TagSymbolClass                  TagCode = 76
	TagDefineShape4                 TagCode = 83
	TagDefineMorphShape2            TagCode = 84
	TagDefineSceneAndFrameLabelData TagCode = 86
	TagDefineBinaryData             TagCode = 87
	TagDefineFont4                  TagCode = 91
)

var tagNames = map[TagCode]string{
	TagEnd:                          "End",
	TagShowFrame:                    "ShowFrame",
	TagDefineShape:                  "DefineShape",
	TagPlaceObject:                  "PlaceObject",
	TagRemoveObject:                 "RemoveObject",
	TagDefineBits:                   "DefineBits",
	TagJPEGTables:                   "JPEGTables",
	TagSetBackgroundColor:           "SetBackgroundColor",
	TagDoAction:                     "DoAction",
	TagDefineBitsLossless:           "DefineBitsLossless",
	TagDefineBitsJPEG2:              "DefineBitsJPEG2",
	TagDefineShape2:                 "DefineShape2",
	TagPlaceObject2:                 "PlaceObject2",
	TagRemoveObject2:                "RemoveObject2",
	TagDefineShape3:                 "DefineShape3",
	TagDefineBitsJPEG3:              "DefineBitsJPEG3",
	TagDefineBitsLossless2:          "DefineBitsLossless2",
	TagDefineSprite:                 "DefineSprite",
	TagFrameLabel:                   "FrameLabel",
	TagDefineMorphShape:             "DefineMorphShape",
	TagExportAssets:                 "ExportAssets",
	TagDoInitAction:                 "DoInitAction",
	TagFileAttributes:               "FileAttributes",
	TagSymbolClass:                  "SymbolClass",
	TagPlaceObject3:                 "PlaceObject3",
	TagDefineShape4:                 "DefineShape4",
	TagDefineMorphShape2:            "DefineMorphShape2",
	TagDefineSceneAndFrameLabelData: "DefineSceneAndFrameLabelData",
	TagDefineButton:                 "DefineButton",
	TagDefineFont:                   "DefineFont",
	TagDefineText:                   "DefineText",
	TagDefineSound:                  "DefineSound",
	TagDefineText2:                  "DefineText2",
	TagDefineButton2:                "DefineButton2",
	TagDefineEditText:               "DefineEditText",
	TagDefineFont2:                  "DefineFont2",
	TagDefineVideoStream:            "DefineVideoStream",
	TagDefineFont3:                  "DefineFont3",
	TagDefineBinaryData:             "DefineBinaryData",
	TagDefineFont4:                  "DefineFont4",
}

// String returns the tag name, or "Unknown(n)" for codes outside the
// catalogue.
func (c TagCode) String() string {
	if n, ok := tagNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(%d)", uint16(c))
}

// definesCharacter reports whether the code is a definition tag the
// dispatcher has no decoder for but whose body starts with a fresh character
// id. These are retained as [RawDef].
func (c TagCode) definesCharacter() bool {
	switch c {
	case TagDefineButton, TagDefineFont, TagDefineText, TagDefineSound,
		TagDefineText2, TagDefineButton2, TagDefineEditText, TagDefineFont2,
		TagDefineVideoStream, TagDefineFont3, TagDefineBinaryData,
		TagDefineFont4:
		return true
	}
	return false
}

// shapeVersion returns the DefineShape version for a shape tag code, 0 for
// non-shape tags.
func (c TagCode) shapeVersion() int {
	switch c {
	case TagDefineShape:
		return 1
	case TagDefineShape2:
		return 2
	case TagDefineShape3:
		return 3
	case TagDefineShape4:
		return 4
	}
	return 0
}
