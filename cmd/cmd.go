// Package cmd is the thin command-line wrapper around the preparation
// library: it wires files on disk to the encoder, tiler and cache.
package cmd

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bitersun/Sa2VA/cache"
	"github.com/bitersun/Sa2VA/dataset"
	"github.com/bitersun/Sa2VA/envconfig"
	"github.com/bitersun/Sa2VA/imageproc"
	"github.com/bitersun/Sa2VA/logutil"
)

func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "dataprep",
		Short:         "Prepare multimodal conversational training data",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
		},
	}

	encodeCmd := &cobra.Command{
		Use:   "encode CONVERSATIONS.jsonl",
		Short: "Tokenize a conversations file into a CBOR shard",
		Args:  cobra.ExactArgs(1),
		RunE:  EncodeHandler,
	}
	encodeCmd.Flags().String("out", "shard.cbor", "Output shard path")
	encodeCmd.Flags().Int("max-length", envconfig.MaxLength(), "Maximum sequence length")
	encodeCmd.Flags().String("instruction", "{input}", "Instruction template, may use {input} and {round}")
	encodeCmd.Flags().String("system", "{system}", "System template, may use {system}")
	encodeCmd.Flags().String("suffix", "", "Suffix appended to every output")
	encodeCmd.Flags().Bool("suffix-as-eos", false, "Treat the suffix as the stop text instead of the tokenizer EOS")
	encodeCmd.Flags().String("sep", "", "Separator appended after every turn")

	tileCmd := &cobra.Command{
		Use:   "tile IMAGE",
		Short: "Report and optionally write the tiling of an image",
		Args:  cobra.ExactArgs(1),
		RunE:  TileHandler,
	}
	tileCmd.Flags().Int("min-tiles", envconfig.MinTiles(), "Minimum tiles")
	tileCmd.Flags().Int("max-tiles", envconfig.MaxTiles(), "Maximum tiles")
	tileCmd.Flags().Int("tile-size", envconfig.TileSize(), "Tile edge length")
	tileCmd.Flags().Bool("thumbnail", false, "Append a whole-image thumbnail tile")
	tileCmd.Flags().String("out-dir", "", "Write tiles as PNG files to this directory")

	rootCmd.AddCommand(encodeCmd, tileCmd)

	return rootCmd
}

func EncodeHandler(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	maxLength, _ := cmd.Flags().GetInt("max-length")

	template := dataset.PromptTemplate{}
	template.Instruction, _ = cmd.Flags().GetString("instruction")
	template.System, _ = cmd.Flags().GetString("system")
	template.Suffix, _ = cmd.Flags().GetString("suffix")
	template.SuffixAsEOS, _ = cmd.Flags().GetBool("suffix-as-eos")
	template.Sep, _ = cmd.Flags().GetString("sep")

	ds, err := dataset.NewConversations(dataset.ConversationsConfig{
		Path:      args[0],
		MaxLength: maxLength,
		Template:  template,
	}, byteProcessor{})
	if err != nil {
		return err
	}

	slog.Info("encoding conversations", "path", args[0], "conversations", ds.RealLen(), "workers", envconfig.NumWorkers())

	records, err := dataset.Preprocess(context.Background(), ds, envconfig.NumWorkers())
	if err != nil {
		return err
	}

	entries := make([]cache.Entry, len(records))
	for i, r := range records {
		entries[i] = cache.Entry{InputIDs: r.InputIDs, Labels: r.Labels}
	}

	if err := cache.Save(out, entries); err != nil {
		return err
	}

	slog.Info("wrote shard", "path", out, "entries", len(entries))
	return nil
}

func TileHandler(cmd *cobra.Command, args []string) error {
	opts := imageproc.TileOptions{}
	opts.MinTiles, _ = cmd.Flags().GetInt("min-tiles")
	opts.MaxTiles, _ = cmd.Flags().GetInt("max-tiles")
	opts.TileSize, _ = cmd.Flags().GetInt("tile-size")
	opts.Thumbnail, _ = cmd.Flags().GetBool("thumbnail")

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	tiles := imageproc.Tile(img, opts)

	b := img.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d -> %d tile(s) of %dx%d\n",
		args[0], b.Dx(), b.Dy(), len(tiles), opts.TileSize, opts.TileSize)

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for i, tile := range tiles {
		path := filepath.Join(outDir, fmt.Sprintf("tile_%03d.png", i))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := png.Encode(f, tile); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	return nil
}

// byteProcessor is a stand-in tokenizer for the CLI: one id per byte,
// offset past the reserved pad/BOS/EOS ids. Real runs inject a real
// TextProcessor through the library API.
type byteProcessor struct{}

func (byteProcessor) Encode(s string) ([]int32, error) {
	ids := make([]int32, len(s))
	for i := 0; i < len(s); i++ {
		ids[i] = int32(s[i]) + 3
	}
	return ids, nil
}

func (byteProcessor) Special(kind dataset.Special) []int32 {
	switch kind {
	case dataset.SpecialBOS:
		return []int32{1}
	case dataset.SpecialEOS:
		return []int32{2}
	}
	return nil
}
