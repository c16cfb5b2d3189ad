package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yigit/lecturetable/internal/app/models/dto"
	"github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
)

type coursesOptions struct {
	filter services.CourseFilter
	page   int
	size   int
	asJSON bool
}

func newCoursesCmd(root *rootOptions) *cobra.Command {
	opts := &coursesOptions{}

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, catalog, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			result, err := catalog.Search(opts.filter, opts.page, opts.size)
			if err != nil {
				return err
			}
			return printCourses(cmd, result, opts.asJSON)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.filter.Department, "department", "", "exact department name")
	f.StringSliceVar(&opts.filter.Grades, "grade", nil, "grades, e.g. --grade 1,2")
	f.StringSliceVar(&opts.filter.Types, "type", nil, "course type substrings, e.g. 전공")
	f.StringSliceVar(&opts.filter.Days, "day", nil, "day labels, e.g. 월,수")
	f.StringSliceVar(&opts.filter.Credits, "credit", nil, "credit values")
	f.StringVarP(&opts.filter.Query, "query", "q", "", "search term")
	f.IntVar(&opts.page, "page", 1, "page number")
	f.IntVar(&opts.size, "size", 0, "page size (default: catalog batch size)")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON")
	return cmd
}

func printCourses(cmd *cobra.Command, result *services.SearchResult, asJSON bool) error {
	out := cmd.OutOrStdout()

	if asJSON {
		items := make([]dto.CourseResponse, len(result.Items))
		for i := range result.Items {
			items[i] = dto.FromCourse(&result.Items[i], helpers.NormalizePlaces(result.Items[i].Place))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.CourseListResponse{
			Items:      items,
			Pagination: helpers.NewPaginationInfo(int64(result.Total), result.Page, result.Size),
			Query:      result.Query,
			Message:    result.Message,
		})
	}

	if result.Total == 0 {
		fmt.Fprintln(out, result.Message)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDEPT\tGRADE\tTIME\tCREDITS\tPROFESSOR")
	for _, c := range result.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%s\n", c.ID, c.Name, c.Department, c.Grade, c.Time, c.Credits.Value, c.ProfessorLabel())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d of %d courses (page %d)\n", len(result.Items), result.Total, result.Page)
	return nil
}
