package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bootsect/cli"
	"bootsect/image"
	"bootsect/ledger"
	"bootsect/manifest"
	"bootsect/medium"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const stdinSource = "-"

var (
	buildOutput string
	buildName   string
	buildRecord bool
)

type buildJob struct {
	source string
	output string
	name   string
	img    image.BootImage
}

var buildCmd = &cobra.Command{
	Use:   "build <payload...>",
	Short: "Builds boot sector images from raw payloads.",
	Long: `Builds one boot sector image per payload. The payload is copied to the
start of the sector, followed by zero padding and the boot signature.

With no payload arguments the payload is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := planBuild(args)
		if err != nil {
			return err
		}

		var g errgroup.Group
		for _, job := range jobs {
			job := job
			g.Go(func() error {
				return runBuild(job)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if buildRecord || (cfg.Ledger.Enabled && buildName != "") {
			if err := recordBuilds(jobs); err != nil {
				return err
			}
		}

		for _, job := range jobs {
			fmt.Printf("Wrote %s (%s). Hash: %s\n", job.output, job.img.Layout(), job.img.Hash())
		}
		return nil
	},
}

func planBuild(args []string) ([]*buildJob, error) {
	if len(args) > 1 && buildName != "" {
		return nil, errors.New("--name can only be used with a single payload")
	}

	if len(args) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			return nil, errors.New("no payload given and stdin is a terminal")
		}
		job := &buildJob{
			source: stdinSource,
			output: buildOutput,
			name:   buildName,
		}
		if job.output == "" {
			job.output = "boot.img"
		}
		if job.name == "" {
			job.name = "boot"
		}
		return []*buildJob{job}, nil
	}

	var jobs []*buildJob
	seen := make(map[string]bool)
	seenNames := make(map[string]bool)
	for _, arg := range args {
		base := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		job := &buildJob{
			source: arg,
			name:   buildName,
		}
		if job.name == "" {
			job.name = base
		}
		switch {
		case len(args) == 1 && buildOutput != "":
			job.output = buildOutput
		case buildOutput != "":
			job.output = filepath.Join(buildOutput, base+".img")
		default:
			job.output = filepath.Join(filepath.Dir(arg), base+".img")
		}
		if filepath.Clean(job.output) == filepath.Clean(arg) {
			return nil, errors.Errorf("output for %s would overwrite its payload", arg)
		}
		if seen[job.output] {
			return nil, errors.Errorf("more than one payload builds %s", job.output)
		}
		seen[job.output] = true
		if buildRecord && seenNames[job.name] {
			return nil, errors.Errorf("more than one payload records as %s", job.name)
		}
		seenNames[job.name] = true
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func runBuild(job *buildJob) error {
	var payload []byte
	var err error
	if job.source == stdinSource {
		payload, err = ioutil.ReadAll(os.Stdin)
	} else {
		payload, err = ioutil.ReadFile(job.source)
	}
	if err != nil {
		return errors.Wrap(err, "error reading payload")
	}

	img, err := image.Build(payload, cfg.Image.SectorSize, cfg.Image.Signature)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("error building %s", job.source))
	}
	if err := medium.WriteFile(job.output, img); err != nil {
		return errors.Wrap(err, fmt.Sprintf("error writing %s", job.output))
	}
	job.img = img
	return nil
}

func recordBuilds(jobs []*buildJob) error {
	model, err := cfg.Image.Model()
	if err != nil {
		return err
	}
	codec, err := ledger.GetCodec(cfg.Ledger.Compression)
	if err != nil {
		return err
	}
	signer, err := cli.GetSigner(configuredHomeDir)
	if err != nil {
		return errors.Wrap(err, "error loading identity")
	}
	db, err := cli.OpenLedger(configuredHomeDir)
	if err != nil {
		return err
	}
	defer db.Close()

	now := time.Now()
	for _, job := range jobs {
		m := manifest.New(job.name, now, job.img, model)
		rec, err := ledger.NewRecord(signer, m)
		if err != nil {
			return err
		}
		if err := ledger.PutRecord(db, rec, job.img, codec); err != nil {
			return errors.Wrap(err, fmt.Sprintf("error recording %s", job.name))
		}
	}
	return nil
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, cli.FlagOutput, "o", "", "Output image, or output directory when building several payloads")
	buildCmd.Flags().StringVar(&buildName, cli.FlagName, "", "Ledger name of the build")
	buildCmd.Flags().BoolVar(&buildRecord, cli.FlagRecord, false, "Record the build in the ledger")
	rootCmd.AddCommand(buildCmd)
}
