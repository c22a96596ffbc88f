package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-bodyscan/pkg/store"
)

var profilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Inspect the archive of locked profiles",
}

var profilesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List archived profiles, newest first",
	Args:    cobra.NoArgs,
	RunE:    runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print one profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

var profilesExportCmd = &cobra.Command{
	Use:   "export <session-id> <file.png>",
	Short: "Write the silhouette captured at lock to a PNG file",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfilesExport,
}

var profilesDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile and its silhouette",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfilesDelete,
}

var profilesLimit int

func init() {
	profilesListCmd.Flags().IntVarP(&profilesLimit, "limit", "n", store.DefaultListLimit, "Maximum profiles to list")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesExportCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
}

func openArchive() (*store.DB, error) {
	return store.Open(cfg.Store.Path)
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	profiles, err := db.ListProfiles(cmd.Context(), profilesLimit)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles archived yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tLOCKED\tSHAPE\tSR\tWR\tCONF\tSCAN")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\t%d%%\t%.2fs\n",
			p.SessionID,
			p.LockedAt.Local().Format(time.DateTime),
			p.BodyShape,
			p.Ratios.ShoulderHip,
			p.Ratios.WaistHip,
			p.Confidence,
			p.ScanTimeSec,
		)
	}
	return tw.Flush()
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := db.Profile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func runProfilesExport(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	png, err := db.Silhouette(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if err := os.WriteFile(args[1], png, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s (%d bytes)\n", args[1], len(png))
	return nil
}

func runProfilesDelete(cmd *cobra.Command, args []string) error {
	db, err := openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteProfile(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", args[0])
	return nil
}
