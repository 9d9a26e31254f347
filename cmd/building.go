package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/report"
	"github.com/sells-group/facade-energy/internal/store"
	"github.com/sells-group/facade-energy/internal/validation"
)

var buildingCmd = &cobra.Command{
	Use:   "building",
	Short: "Manage stored buildings",
}

// -- building add --

var buildingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add buildings from a JSON, YAML or XLSX file",
	Long:  "Reads one building or a list of buildings from --file. XLSX files use a header row with name, height, north_width, south_width, east_width, west_width, wwr, shgc and optional skylight_height, skylight_width columns.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path, _ := cmd.Flags().GetString("file")
		sheet, _ := cmd.Flags().GetString("sheet")

		buildings, err := readBuildingsFile(path, sheet)
		if err != nil {
			return err
		}
		if err := validateBuildings(buildings); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var created []model.Building
		if len(buildings) == 1 {
			b, err := st.CreateBuilding(ctx, buildings[0])
			if err != nil {
				return eris.Wrap(err, "building add")
			}
			created = []model.Building{*b}
		} else {
			created, err = st.ImportBuildings(ctx, buildings)
			if err != nil {
				return eris.Wrap(err, "building add")
			}
		}

		zap.L().Info("buildings added", zap.Int("count", len(created)), zap.String("file", path))
		formatBuildingsList(cmd.OutOrStdout(), created)
		return nil
	},
}

// -- building list --

var buildingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored buildings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name, _ := cmd.Flags().GetString("name")
		limit, _ := cmd.Flags().GetInt("limit")

		buildings, err := st.ListBuildings(ctx, store.BuildingFilter{Name: name, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "building list")
		}
		if len(buildings) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No buildings found.")
			return nil
		}

		formatBuildingsList(cmd.OutOrStdout(), buildings)
		return nil
	},
}

// -- building get --

var buildingGetCmd = &cobra.Command{
	Use:   "get <building-id>",
	Short: "Show a stored building as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := validation.BuildingID(args[0]); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := st.GetBuilding(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "building get")
		}
		return writeIndentedJSON(cmd.OutOrStdout(), b)
	},
}

// -- building delete --

var buildingDeleteCmd = &cobra.Command{
	Use:   "delete <building-id>",
	Short: "Delete a stored building and its analysis history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := validation.BuildingID(args[0]); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := st.DeleteBuilding(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "building delete")
		}

		zap.L().Info("building deleted", zap.String("building_id", b.ID), zap.String("name", b.Name))
		return nil
	},
}

func init() {
	buildingAddCmd.Flags().String("file", "", "path to a .json, .yaml, .yml or .xlsx file (required)")
	buildingAddCmd.Flags().String("sheet", "", "XLSX sheet name (default first sheet)")
	_ = buildingAddCmd.MarkFlagRequired("file")

	buildingListCmd.Flags().String("name", "", "filter by name substring")
	buildingListCmd.Flags().Int("limit", 50, "max number of buildings to display")

	buildingCmd.AddCommand(buildingAddCmd)
	buildingCmd.AddCommand(buildingListCmd)
	buildingCmd.AddCommand(buildingGetCmd)
	buildingCmd.AddCommand(buildingDeleteCmd)
	rootCmd.AddCommand(buildingCmd)
}

// readBuildingsFile decodes one building or a list of buildings from path,
// choosing the decoder by file extension.
func readBuildingsFile(path, sheet string) ([]model.Building, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return report.ReadBuildings(path, sheet)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	switch ext {
	case ".json":
		return decodeJSONBuildings(data)
	case ".yaml", ".yml":
		return decodeYAMLBuildings(data)
	default:
		return nil, eris.Errorf("unsupported building file type %q (want .json, .yaml, .yml or .xlsx)", ext)
	}
}

func decodeJSONBuildings(data []byte) ([]model.Building, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []model.Building
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, eris.Wrap(err, "decode buildings json")
		}
		return list, nil
	}

	var b model.Building
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, eris.Wrap(err, "decode building json")
	}
	return []model.Building{b}, nil
}

func decodeYAMLBuildings(data []byte) ([]model.Building, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "decode buildings yaml")
	}
	if len(doc.Content) == 0 {
		return nil, eris.New("decode buildings yaml: empty document")
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var list []model.Building
		if err := root.Decode(&list); err != nil {
			return nil, eris.Wrap(err, "decode buildings yaml")
		}
		return list, nil
	}

	var b model.Building
	if err := root.Decode(&b); err != nil {
		return nil, eris.Wrap(err, "decode building yaml")
	}
	return []model.Building{b}, nil
}

// validateBuildings checks every building and reports all failures at once.
func validateBuildings(buildings []model.Building) error {
	if len(buildings) == 0 {
		return eris.New("no buildings in file")
	}

	var problems []string
	for i := range buildings {
		if err := validation.Building(&buildings[i]); err != nil {
			problems = append(problems, fmt.Sprintf("building %d: %v", i+1, err))
		}
	}
	if len(problems) > 0 {
		return eris.New(strings.Join(problems, "\n"))
	}
	return nil
}

// formatBuildingsList writes a tabular list of buildings to out.
func formatBuildingsList(out io.Writer, buildings []model.Building) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tHEIGHT\tN/S/E/W WIDTH\tWWR\tSHGC\tSKYLIGHT\tCREATED")
	for _, b := range buildings {
		skylight := "-"
		if b.Skylight != nil {
			skylight = fmt.Sprintf("%gx%g", b.Skylight.Height, b.Skylight.Width)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%g\t%g/%g/%g/%g\t%g\t%g\t%s\t%s\n",
			b.ID, b.Name, b.Height,
			b.Dimensions.North.Width, b.Dimensions.South.Width, b.Dimensions.East.Width, b.Dimensions.West.Width,
			b.WWR, b.SHGC, skylight,
			b.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func writeIndentedJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
