package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfdome/swfkit/pkg/cache"
	"github.com/halfdome/swfkit/pkg/swf"
)

// infoCommand creates the info command: header summary, tag census, and
// decode diagnostics for one file.
func (c *CLI) infoCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show the header, tag census, and decode diagnostics of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd, args[0], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the census cache")
	return cmd
}

func (c *CLI) runInfo(cmd *cobra.Command, input string, noCache bool) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	doc, err := swf.Parse(data, swf.WithLogger(c.Logger))
	if err != nil {
		return err
	}

	census, err := c.census(ctx, data, noCache)
	if err != nil {
		return err
	}

	h := doc.Header
	printKeyValue("File", input)
	printKeyValue("Signature", h.Signature)
	printKeyValue("Version", strconv.Itoa(int(h.Version)))
	printKeyValue("Compressed", strconv.FormatBool(h.Compressed))
	printKeyValue("Length", fmt.Sprintf("%d bytes", h.FileLength))
	printKeyValue("Stage", fmt.Sprintf("%.0f x %.0f px", h.FrameSize.PixelWidth(), h.FrameSize.PixelHeight()))
	printKeyValue("Frame rate", fmt.Sprintf("%.2f fps", h.FrameRate))
	printKeyValue("Frames", strconv.Itoa(int(h.FrameCount)))
	printKeyValue("Characters", strconv.Itoa(len(doc.CharacterIDs())))

	printNewline()
	printInfo("Tag census")
	for _, e := range census {
		printDetail("%-24s x%-4d %d bytes", e.Name, e.Count, e.Bytes)
	}

	printDiagnostics(&doc.Diag)
	return nil
}

// census computes the tag census, consulting the document cache first. The
// census is a pure function of the file bytes, so it keys on the hash alone.
func (c *CLI) census(ctx context.Context, data []byte, noCache bool) ([]swf.CensusEntry, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	key := newKeyer().DocumentKey(cache.Hash(data))

	if !noCache {
		if cached, hit, err := store.Get(ctx, key); err == nil && hit {
			var entries []swf.CensusEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := swf.Census(data)
	if err != nil {
		return nil, err
	}

	if !noCache {
		if blob, err := json.Marshal(entries); err == nil {
			_ = store.Set(ctx, key, blob, cache.TTLDocument)
		}
	}
	return entries, nil
}

// printDiagnostics reports non-fatal decode events collected during parse.
func printDiagnostics(diag *swf.Diagnostics) {
	if len(diag.UnsupportedTags) == 0 && len(diag.TagErrors) == 0 && diag.Redefinitions == 0 {
		return
	}

	printNewline()
	printInfo("Diagnostics")
	for code, n := range diag.UnsupportedTags {
		printDetail("retained %d unsupported %s tag(s)", n, code)
	}
	for _, te := range diag.TagErrors {
		printWarning("tag %s at offset %d: %v", te.Code, te.Offset, te.Err)
	}
	if diag.Redefinitions > 0 {
		printWarning("%d character id(s) defined more than once", diag.Redefinitions)
	}
}
