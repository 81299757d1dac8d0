package swf

import "sort"

// CensusEntry summarizes all tags sharing one code.
type CensusEntry struct {
	Code  TagCode `json:"code"`
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Bytes int     `json:"bytes"`
}

// Census counts the top-level tags of a file by code, with total body
// bytes per code. Nested sprite tags count once via their DefineSprite
// wrapper. A truncated trailing tag ends the census without error.
func Census(data []byte) ([]CensusEntry, error) {
	_, c, base, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	tags, _ := readTagList(c, base)

	byCode := make(map[TagCode]*CensusEntry)
	for _, t := range tags {
		e := byCode[t.Code]
		if e == nil {
			e = &CensusEntry{Code: t.Code, Name: t.Code.String()}
			byCode[t.Code] = e
		}
		e.Count++
		e.Bytes += len(t.Body)
	}

	out := make([]CensusEntry, 0, len(byCode))
	for _, e := range byCode {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
