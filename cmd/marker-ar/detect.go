package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

var detectOut string

var detectCmd = &cobra.Command{
	Use:   "detect [image]",
	Short: "Detect markers in a still image and print their poses as JSON",
	Long: `Run the marker pipeline on one image file. The result lists the accepted
ellipses, the per-stage rejection report and a pose or error per marker.
With --out the annotated frame is written as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVarP(&detectOut, "out", "o", "", "write the annotated image to this file")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	p, err := opts.newPipeline(cmd)
	if err != nil {
		return err
	}

	img, err := imaging.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}

	p = p.ForImage(img)
	r := p.ProcessImage(img)
	if detectOut != "" {
		if err := imaging.Save(p.Overlay(img, r), detectOut); err != nil {
			return fmt.Errorf("save %s: %w", detectOut, err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return err
	}
	return r.Err()
}
