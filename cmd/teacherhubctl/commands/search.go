package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

func searchCmd() *cobra.Command {
	var (
		req                dto.TeacherSearchRequest
		scoreMin, scoreMax float64
		expMin, expMax     float64
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search teachers with admin filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("score-min") {
				req.ScoreMin = &scoreMin
			}
			if flags.Changed("score-max") {
				req.ScoreMax = &scoreMax
			}
			if flags.Changed("experience-min") {
				req.ExperienceMin = &expMin
			}
			if flags.Changed("experience-max") {
				req.ExperienceMax = &expMax
			}

			teachers, pagination, err := appCtx.teachers.AdminSearch(cmd.Context(), token, req)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPINCODES\tSCORE")
			for _, t := range teachers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.FullName, t.Email, pincodes(t), score(t))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d of %d teachers\n", pagination.Page, len(teachers), pagination.TotalCount)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&req.Subjects, "subject", nil, "subject name (repeatable)")
	f.StringSliceVar(&req.ClassCategories, "class-category", nil, "class category name (repeatable)")
	f.StringSliceVar(&req.JobRoles, "job-role", nil, "job role (repeatable)")
	f.StringSliceVar(&req.Skills, "skill", nil, "skill (repeatable)")
	f.StringVar(&req.Pincode, "pincode", "", "pincode")
	f.StringVar(&req.Area, "area", "", "area")
	f.StringVar(&req.City, "city", "", "city")
	f.StringVar(&req.State, "state", "", "state")
	f.Float64Var(&scoreMin, "score-min", 0, "minimum score")
	f.Float64Var(&scoreMax, "score-max", 0, "maximum score")
	f.Float64Var(&expMin, "experience-min", 0, "minimum experience in years")
	f.Float64Var(&expMax, "experience-max", 0, "maximum experience in years")
	f.IntVar(&req.Page, "page", 1, "page number")
	f.IntVar(&req.PageSize, "page-size", 20, "page size")
	return cmd
}

func pincodes(t models.TeacherRecord) string {
	codes := make([]string, 0, len(t.Addresses))
	for _, a := range t.Addresses {
		if a.Pincode != "" {
			codes = append(codes, a.Pincode)
		}
	}
	return strings.Join(codes, ",")
}

func score(t models.TeacherRecord) string {
	if t.Score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *t.Score)
}
