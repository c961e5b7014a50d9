package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/query"
	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

type options struct {
	sort      string
	baseModel string
	groupBy   string
	since     string
	hideNSFW  bool
	json      bool
	explain   bool
	columns   []string
}

type jsonGroup struct {
	Name   string           `json:"name"`
	Models []*record.Record `json:"models"`
}

type jsonResult struct {
	Total  int              `json:"total"`
	Shown  int              `json:"shown"`
	Models []*record.Record `json:"models,omitempty"`
	Groups []jsonGroup      `json:"groups,omitempty"`
}

func NewCmdSearch(s *state.State) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "search [query...]",
		Aliases: []string{"s", "find"},
		Short:   "Search the library and print matching models",
		Long: heredoc.Doc(`
			Search the active library and print the matching models.

			Plain words are matched against the name, filename and category.
			Quotes, ! (not), | (or) and < > (groups) switch to the query
			language, which searches every metadata field.
		`),
		Example: heredoc.Doc(`
			loradex search ink
			loradex search '<ink | sketch> !nsfw' --group-by Category
			loradex search --base-model Pony --since "2 weeks ago" --json
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, s, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.sort, "sort", "", "Sort mode, defaults to the library setting")
	cmd.Flags().StringVarP(&opts.baseModel, "base-model", "b", "", "Only show models for this base model")
	cmd.Flags().StringVarP(&opts.groupBy, "group-by", "g", "", "Group results by a column")
	cmd.Flags().StringVar(&opts.since, "since", "", "Only show models modified after this date")
	cmd.Flags().BoolVar(&opts.hideNSFW, "hide-nsfw", false, "Hide models flagged as NSFW")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Print how the query is parsed")
	cmd.Flags().StringSliceVarP(&opts.columns, "columns", "c", nil, "Columns to print")

	return cmd
}

func run(cmd *cobra.Command, s *state.State, q string, opts *options) error {
	out := cmd.OutOrStdout()

	if opts.explain {
		mode := "plain (name, filename, category)"
		if query.IsAdvanced(q) {
			mode = "query language (all fields)"
		}
		fmt.Fprintf(out, "Mode: %s\nExpression: %s\n", mode, query.Explain(query.ParseQuery(q)))
		return nil
	}

	viewOpts, err := resolveOptions(cmd, s.Library, q, opts)
	if err != nil {
		return err
	}

	c, err := s.Snapshot()
	if err != nil {
		return err
	}

	all := c.Records()
	shown := views.Apply(all, viewOpts)
	groups := views.GroupRecords(shown, viewOpts.GroupBy)

	if opts.json {
		return writeJSON(cmd, groups, viewOpts.GroupBy, len(all), len(shown))
	}

	columns := opts.columns
	if len(columns) == 0 && s.Library != nil {
		columns = s.Library.VisibleColumns
	}
	if len(columns) == 0 {
		columns = config.DefaultColumns
	}
	for _, column := range columns {
		if !validColumn(column) {
			return fmt.Errorf("invalid column: %q", column)
		}
	}

	fmt.Fprintln(out, views.Title(viewOpts, len(shown), len(all)))
	render(out, groups, columns, terminalWidth(out))
	return nil
}

// resolveOptions merges the flags over the library defaults.
func resolveOptions(
	cmd *cobra.Command,
	lib *config.Library,
	q string,
	opts *options,
) (views.Options, error) {
	viewOpts := views.Options{
		Query:     q,
		Sort:      opts.sort,
		GroupBy:   opts.groupBy,
		BaseModel: opts.baseModel,
		HideNSFW:  opts.hideNSFW,
	}

	if lib != nil {
		if viewOpts.Sort == "" {
			viewOpts.Sort = lib.DefaultSort
		}
		if viewOpts.GroupBy == "" {
			viewOpts.GroupBy = lib.GroupBy
		}
		if !cmd.Flags().Changed("hide-nsfw") {
			viewOpts.HideNSFW = lib.HideNSFW
		}
	}

	if !views.ValidSort(viewOpts.Sort) {
		return viewOpts, fmt.Errorf("invalid sort: %q", viewOpts.Sort)
	}
	if !views.ValidGroupBy(viewOpts.GroupBy) {
		return viewOpts, fmt.Errorf("invalid group: %q", viewOpts.GroupBy)
	}

	if since := strings.TrimSpace(opts.since); since != "" {
		t, err := parseSince(since)
		if err != nil {
			return viewOpts, fmt.Errorf("invalid --since value %q: %w", since, err)
		}
		viewOpts.ModifiedAfter = t
	}

	return viewOpts, nil
}

// parseSince accepts anything dateparse understands plus relative forms
// like "3 days ago" or "2w".
func parseSince(value string) (time.Time, error) {
	if d, ok := relativeDuration(value); ok {
		return time.Now().Add(-d), nil
	}
	return dateparse.ParseLocal(value)
}

func relativeDuration(value string) (time.Duration, bool) {
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) == 3 && fields[2] == "ago" {
		fields = fields[:2]
	}

	var amount int
	var unit string
	switch len(fields) {
	case 1:
		if _, err := fmt.Sscanf(fields[0], "%d%s", &amount, &unit); err != nil {
			return 0, false
		}
	case 2:
		if _, err := fmt.Sscanf(fields[0], "%d", &amount); err != nil {
			return 0, false
		}
		unit = fields[1]
	default:
		return 0, false
	}
	if amount < 0 {
		return 0, false
	}

	day := 24 * time.Hour
	switch strings.TrimSuffix(unit, "s") {
	case "h", "hour":
		return time.Duration(amount) * time.Hour, true
	case "d", "day":
		return time.Duration(amount) * day, true
	case "w", "week":
		return time.Duration(amount) * 7 * day, true
	case "m", "month":
		return time.Duration(amount) * 30 * day, true
	case "y", "year":
		return time.Duration(amount) * 365 * day, true
	}
	return 0, false
}

func writeJSON(cmd *cobra.Command, groups []views.Group, groupBy string, total, shown int) error {
	result := jsonResult{Total: total, Shown: shown}
	if groupBy == "" || groupBy == views.GroupNone {
		result.Models = []*record.Record{}
		if len(groups) > 0 {
			result.Models = append(result.Models, groups[0].Records...)
		}
	} else {
		result.Groups = make([]jsonGroup, 0, len(groups))
		for _, g := range groups {
			result.Groups = append(result.Groups, jsonGroup{Name: g.Name, Models: g.Records})
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func validColumn(name string) bool {
	for _, c := range views.Columns {
		if c == name {
			return true
		}
	}
	return false
}
