package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vango-dev/imgupload/internal/config"
	"github.com/vango-dev/imgupload/internal/errors"
	"github.com/vango-dev/imgupload/pkg/dom"
	"github.com/vango-dev/imgupload/pkg/upload"
)

// uploadOptions holds the upload command flags.
type uploadOptions struct {
	configPath string
	url        string
	csrf       string
	maxFiles   int
	maxSize    int64
	types      []string
	timeout    time.Duration
}

func uploadCmd() *cobra.Command {
	opts := &uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload [flags] FILE...",
		Short: "Validate and upload image files",
		Long: `Validate the given files against the type, size and count limits and
send the accepted ones to the upload URL in one multipart POST.

Rejected files are reported on stderr and skipped. The endpoint's JSON
response is printed on stdout; the command fails if it does not report
success.

Examples:
  imgupload upload --url https://example.com/upload photo.jpg scan.png
  imgupload upload --max-size 2097152 --type image/png *.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(opts.configPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runUpload(ctx, afero.NewOsFs(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: imgupload.json or imgupload.yaml if present)")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "Upload endpoint URL")
	cmd.Flags().StringVar(&opts.csrf, "csrf", "", "CSRF token sent as csrfmiddlewaretoken")
	cmd.Flags().IntVar(&opts.maxFiles, "max-files", 0, "Maximum number of files")
	cmd.Flags().Int64Var(&opts.maxSize, "max-size", 0, "Maximum file size in bytes")
	cmd.Flags().StringArrayVarP(&opts.types, "type", "t", nil, "Allowed MIME type (repeatable)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Upload timeout")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (o *uploadOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.UploadURL = o.url
	}
	if flags.Changed("csrf") {
		cfg.CSRFToken = o.csrf
	}
	if flags.Changed("max-files") {
		cfg.MaxFiles = o.maxFiles
	}
	if flags.Changed("max-size") {
		cfg.MaxSize = o.maxSize
	}
	if flags.Changed("type") {
		cfg.AllowedTypes = o.types
	}
}

// runUpload feeds paths through a widget bound to an in-memory document
// and uploads whatever it accepted.
func runUpload(ctx context.Context, fs afero.Fs, cfg *config.Config, paths []string, stdout, stderr io.Writer) error {
	if cfg.UploadURL == "" {
		return errors.New("E204")
	}
	if len(paths) == 0 {
		return errors.New("E201").
			WithSuggestion("Pass one or more image paths: imgupload upload photo.jpg")
	}

	candidates := make([]dom.File, 0, len(paths))
	for _, path := range paths {
		if info, err := fs.Stat(path); err == nil && info.IsDir() {
			return errors.New("E202").WithDetail(path + " is a directory")
		}
		f, err := dom.NewFSFile(fs, path)
		if err != nil {
			return errors.New("E202").WithDetail(path).Wrap(err)
		}
		candidates = append(candidates, f)
	}

	doc := dom.NewDocument()
	widget := upload.New(cfg.UploadConfig(), doc.Anchors(),
		upload.WithNotifier(upload.NotifyFunc(func(errs upload.ValidationErrors) {
			for _, e := range errs {
				fmt.Fprintf(stderr, "\033[33m⚠\033[0m %s\n", e.Error())
			}
		})),
	)
	defer widget.Close()

	batch := widget.ProcessFiles(candidates)
	if _, err := batch.Wait(ctx); err != nil {
		// A file that cannot be read for its preview will fail the upload too.
		return errors.New("E202").Wrap(err)
	}
	if len(batch.Accepted) > 0 {
		fmt.Fprintf(stderr, "\033[32m✓\033[0m %s, uploading to %s\n", doc.Counter().Text(), cfg.UploadURL)
	}

	result := widget.Upload(ctx)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(out))

	if !result.Success() {
		return errors.New("E203").WithDetail(result.ErrorMessage())
	}
	return nil
}
