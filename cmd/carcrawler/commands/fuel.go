package commands

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"carcatalog/internal/autohome"
	"carcatalog/internal/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fuelCmd)
	rootCmd.AddCommand(energiesCmd)
}

func printFuelTypes(cmd *cobra.Command, client *autohome.Client, seriesID int64) {
	found := client.FetchFuelTypes(cmd.Context(), seriesID)
	fmt.Fprintf(cmd.OutOrStdout(), "series %d fuel types: %s\n", seriesID, strings.Join(found, ", "))
}

var fuelCmd = &cobra.Command{
	Use:   "fuel <series_id>",
	Short: "Resolves the fuel types of a single series.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seriesID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || seriesID <= 0 {
			return fmt.Errorf("invalid series id %q", args[0])
		}

		client := newClient()
		defer client.Close()

		printFuelTypes(cmd, client, seriesID)
		return nil
	},
}

var energiesCmd = &cobra.Command{
	Use:   "energies",
	Short: "Lists the energy filter ids accepted by `crawl --energy`.",
	Run: func(cmd *cobra.Command, args []string) {
		ids := make([]int, 0, len(catalog.EnergyTypes))
		for id := range catalog.EnergyTypes {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Energy"})
		t.AppendRow(table.Row{"x", "all"})
		for _, id := range ids {
			t.AppendRow(table.Row{id, catalog.EnergyTypes[id]})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
