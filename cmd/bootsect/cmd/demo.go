package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"bootsect/addr"
	"bootsect/cli"
	"bootsect/image"
	"bootsect/medium"
	"bootsect/payload"

	"github.com/spf13/cobra"
)

var (
	demoBias   string
	demoText   string
	demoOutput string
)

var demoCmd = &cobra.Command{
	Use:   "demo <program>",
	Short: "Assembles a built-in program and builds its boot image.",
	Long: fmt.Sprintf(`Assembles a built-in program and builds its boot image.

Programs: %s`, strings.Join(payload.Programs(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := cfg.Image.Model()
		if err != nil {
			return err
		}
		if demoBias != "" {
			policy, err := addr.NewPolicy(demoBias)
			if err != nil {
				return err
			}
			model.Policy = policy
		}

		code, err := payload.Program(args[0], model, demoText)
		if err != nil {
			return err
		}
		img, err := image.Build(code, cfg.Image.SectorSize, cfg.Image.Signature)
		if err != nil {
			return err
		}

		fmt.Printf("Program:  %s (bias %s, load address 0x%04x)\n", args[0], model.Policy, model.LoadAddress)
		fmt.Printf("Payload:  %s\n", hex.EncodeToString(code))
		fmt.Printf("Layout:   %s\n", img.Layout())
		if demoOutput == "" {
			return nil
		}
		if err := medium.WriteFile(demoOutput, img); err != nil {
			return err
		}
		fmt.Printf("Wrote %s.\n", demoOutput)
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoBias, cli.FlagBias, "", "Bias policy (build, runtime or none); defaults to the configured one")
	demoCmd.Flags().StringVar(&demoText, cli.FlagText, "", "Byte or string the program prints")
	demoCmd.Flags().StringVarP(&demoOutput, cli.FlagOutput, "o", "", "Write the image here")
	rootCmd.AddCommand(demoCmd)
}
