package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ozgoose/foilopt/internal/foil"
	"github.com/ozgoose/foilopt/internal/report"
)

var (
	genThickness float64
	genChord     float64
	genXLE       float64
	genXTE       float64
	genS         float64
	genOutDir    string
	genPlot      string
	genFrom      string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate one aerofoil coordinate file",
	Long: `Generates the 50-station discretized profile for one parameter set
and writes it as a solver-ready coordinate file named after the rounded
parameters. Optionally renders the continuous profile as a PNG, or plots
an existing coordinate file with --from.`,
	RunE: runGen,
}

func init() {
	genCmd.Flags().Float64Var(&genThickness, "thickness", 0, "Profile thickness (default from config)")
	genCmd.Flags().Float64Var(&genChord, "chord", 0, "Chord length")
	genCmd.Flags().Float64Var(&genXLE, "xle", 0, "Leading edge length parameter")
	genCmd.Flags().Float64Var(&genXTE, "xte", 0, "Trailing edge length parameter")
	genCmd.Flags().Float64Var(&genS, "s", 0, "Trailing edge shape factor")
	genCmd.Flags().StringVar(&genOutDir, "out-dir", ".", "Directory for the coordinate file")
	genCmd.Flags().StringVar(&genPlot, "plot", "", "Also render the profile to this PNG path")
	genCmd.Flags().StringVar(&genFrom, "from", "", "Plot an existing coordinate file instead of generating")

	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	if genFrom != "" {
		return plotExisting(genFrom, genPlot)
	}

	params := foil.Params{
		Thickness: cfg.Thickness,
		Chord:     cfg.Chord,
		XLE:       cfg.XLE,
		XTE:       cfg.XTE0,
		S:         cfg.S0,
	}
	if cmd.Flags().Changed("thickness") {
		params.Thickness = genThickness
	}
	if cmd.Flags().Changed("chord") {
		params.Chord = genChord
	}
	if cmd.Flags().Changed("xle") {
		params.XLE = genXLE
	}
	if cmd.Flags().Changed("xte") {
		params.XTE = genXTE
	}
	if cmd.Flags().Changed("s") {
		params.S = genS
	}

	geom, err := foil.Generate(params)
	if err != nil {
		return err
	}

	datPath, err := geom.WriteDatFile(genOutDir)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d stations)\n", datPath, foil.Stations)

	if genPlot != "" {
		if err := report.Profile(params, genPlot); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", genPlot)
	}
	return nil
}

// plotExisting reads a coordinate file back and renders its surfaces.
func plotExisting(datPath, plotPath string) error {
	if plotPath == "" {
		return fmt.Errorf("--from requires --plot")
	}

	f, err := os.Open(datPath)
	if err != nil {
		return fmt.Errorf("failed to open coordinate file: %w", err)
	}
	defer f.Close()

	name, upper, lower, err := foil.ReadDat(f)
	if err != nil {
		return err
	}

	if err := report.ProfilePoints(name, upper, lower, plotPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d upper, %d lower points)\n", plotPath, len(upper), len(lower))
	return nil
}
