package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	application "packagesync/internal/app"
	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	filters := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), opts, func(app *application.Application) error {
				f := entities.Filters{}
				for key, value := range filters {
					if *value != "" {
						f[key] = *value
					}
				}

				packages, err := app.Tracking.ListPackages(cmd.Context(), f)
				if err != nil {
					return err
				}
				if packages == nil {
					packages = []entities.Package{}
				}
				return printJSON(cmd.OutOrStdout(), packages)
			})
		},
	}

	for key, usage := range map[string]string{
		entities.FilterStatus:           "comma separated statuses",
		entities.FilterPriority:         "priority",
		entities.FilterDeliveryPersonID: "delivery person id",
		entities.FilterDate:             "estimated delivery date, YYYY-MM-DD",
		entities.FilterCarrier:          "carrier",
	} {
		filters[key] = cmd.Flags().String(key, "", usage)
	}
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show package detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), opts, func(app *application.Application) error {
				p, err := app.Tracking.GetPackage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}
}

func newUpdateStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		notes    string
		lat, lon float64
	)
	cmd := &cobra.Command{
		Use:   "update-status <id> <status>",
		Short: "Change package status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := entities.ParseStatus(args[1])
			if !ok {
				return entities.NewError(entities.KindInvalidInput, fmt.Sprintf("unknown status %q", args[1]), nil)
			}

			var sc entities.StatusContext
			if notes != "" {
				sc.Notes = &notes
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
				sc.Location = &entities.Location{Latitude: lat, Longitude: lon}
			}

			return withApplication(cmd.Context(), opts, func(app *application.Application) error {
				p, err := app.Tracking.UpdateStatus(cmd.Context(), args[0], status, sc)
				if err != nil {
					return err
				}
				if app.Connectivity != nil && !app.Connectivity.Online() {
					opts.logger().Warn("remote store offline, update is queued in memory and is lost on exit",
						logger.NewField("package_id", p.ID),
					)
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "free form notes")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the status change")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of the status change")
	return cmd
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		limit        int
		minAge       int
		geocodedOnly bool
		metadata     bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one bulk sync exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), opts, func(app *application.Application) error {
				syncOpts := app.Tracking.SyncDefaults()
				flags := cmd.Flags()
				if flags.Changed("limit") {
					syncOpts.Limit = limit
				}
				if flags.Changed("min-age-hours") {
					syncOpts.MinRecordAgeHours = minAge
				}
				if flags.Changed("geocoded-only") {
					syncOpts.GeocodingReadyOnly = geocodedOnly
				}
				if flags.Changed("metadata") {
					syncOpts.IncludeMetadata = metadata
				}

				result, err := app.Tracking.SyncPackages(cmd.Context(), &syncOpts)
				if result != nil {
					if printErr := printJSON(cmd.OutOrStdout(), result); printErr != nil {
						return printErr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max packages in response")
	cmd.Flags().IntVar(&minAge, "min-age-hours", 0, "skip records younger than this")
	cmd.Flags().BoolVar(&geocodedOnly, "geocoded-only", false, "only packages with finished geocoding")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "ask server to include metadata")
	return cmd
}

// withApplication собирает приложение без фоновых задач на время одной команды.
func withApplication(ctx context.Context, opts *rootOptions, fn func(app *application.Application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, cleanup, err := application.InitializeApplication(ctx, opts.logger(), opts.cfg, false)
	if err != nil {
		return fmt.Errorf("business logic: %w", err)
	}
	defer cleanup()

	if err := fn(app); err != nil {
		if e, ok := entities.AsError(err); ok {
			return fmt.Errorf("%w (%s)", err, e.Guidance())
		}
		return err
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
