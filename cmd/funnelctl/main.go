package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/funnel_go/internal/config"
	"github.com/AngelCh415/funnel_go/internal/ingest"
	"github.com/AngelCh415/funnel_go/internal/metrics"
	"github.com/AngelCh415/funnel_go/internal/models"
)

var version = "dev"

var analyzeFlags struct {
	ios, android, spend string
	format              string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "funnelctl",
		Short:        "Reconcile iOS, Android and media spend exports into funnel metrics",
		SilenceUsage: true,
	}

	analyze := &cobra.Command{
		Use:   "analyze",
		Short: "Run the funnel analysis over three files (paths or http(s) URLs)",
		Args:  cobra.NoArgs,
		RunE:  runAnalyze,
	}
	analyze.Flags().StringVar(&analyzeFlags.ios, "ios", "", "iOS funnel export (csv or xlsx)")
	analyze.Flags().StringVar(&analyzeFlags.android, "android", "", "Android funnel export (csv or xlsx)")
	analyze.Flags().StringVar(&analyzeFlags.spend, "spend", "", "media spend export (csv or xlsx)")
	analyze.Flags().StringVarP(&analyzeFlags.format, "format", "f", "table", "output format: table or json")
	for _, f := range []string{"ios", "android", "spend"} {
		_ = analyze.MarkFlagRequired(f)
	}

	root.AddCommand(analyze, &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run:   func(cmd *cobra.Command, _ []string) { fmt.Fprintln(cmd.OutOrStdout(), version) },
	})
	return root
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout*3)
	defer cancel()

	fetch := ingest.NewFetcher(ingest.NewHTTPClient(cfg.HTTPTimeout), cfg.FetchRetries)
	var u ingest.Uploads
	for _, f := range []struct {
		loc string
		dst *ingest.Input
	}{
		{analyzeFlags.ios, &u.IOS},
		{analyzeFlags.android, &u.Android},
		{analyzeFlags.spend, &u.Spend},
	} {
		b, name, err := fetch.Open(ctx, f.loc)
		if err != nil {
			return fmt.Errorf("open %s: %w", f.loc, err)
		}
		*f.dst = ingest.Input{Filename: name, Data: b}
	}

	a, err := ingest.NewETL(logger, nil).Run(ctx, u)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeFlags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	return printTable(out, a)
}

func printTable(out io.Writer, a *models.Analysis) error {
	s := a.Summary
	fmt.Fprintf(out, "Total spend %.0f | installs %.0f | avg CPI %.2f | install→KYC %.1f%% | install→OTP %.1f%%\n\n",
		s.TotalSpend, s.TotalInstalls, s.AvgCostPerInstall, s.InstallToKYCPct, s.InstallToOTPPct)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tSpend\tInstalls\tKYC\tOTP\tCPI\tInstall→KYC%\tInstall→OTP%\t")
	for _, r := range metrics.Table(a.Rows) {
		cpi := "-"
		if r.CPI != nil {
			cpi = fmt.Sprintf("%.2f", *r.CPI)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.0f\t%.0f\t%.0f\t%s\t%.1f\t%.1f\t\n",
			r.Date, r.Spend, r.Installs, r.KYC, r.OTP, cpi, r.InstallToKYCPct, r.InstallToOTPPct)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	in := a.Insights
	fmt.Fprintf(out, "\nBest CPI day: %s (%s)\n", in.BestCPIDay.Date, fmtValue(in.BestCPIDay.Value, "%.2f"))
	fmt.Fprintf(out, "Best conversion day: %s (%s)\n", in.BestConversionDay.Date, fmtValue(in.BestConversionDay.Value, "%.1f%%"))
	fmt.Fprintf(out, "Average install→KYC %.1f%%, install→OTP %.1f%%\n", in.AvgInstallToKYCPct, in.AvgInstallToOTPPct)
	for _, src := range []models.Source{models.SourceIOS, models.SourceAndroid, models.SourceSpend} {
		if n := a.Dropped[src]; n > 0 {
			fmt.Fprintf(out, "%s: %d rows dropped (unparseable date)\n", src, n)
		}
	}
	for _, w := range a.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	return nil
}

func fmtValue(v *float64, layout string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(layout, *v)
}
