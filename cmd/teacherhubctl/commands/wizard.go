package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/teacherhub-gateway/internal/dto"
	"github.com/noah-isme/teacherhub-gateway/internal/models"
	"github.com/noah-isme/teacherhub-gateway/internal/service"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

func wizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Walk through a teacher enquiry interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			return runWizard(cmd.Context(), appCtx.wizard, appCtx.catalog, p)
		},
	}
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) notify(session *models.WizardSession, err error) {
	switch {
	case session != nil && session.Notification != nil:
		fmt.Fprintf(p.out, "[%s] %s\n", session.Notification.Level, session.Notification.Message)
	case err != nil:
		fmt.Fprintf(p.out, "[error] %s\n", appErrors.FromError(err).Message)
	}
}

// runWizard drives a session step by step, re-prompting on recoverable errors.
func runWizard(ctx context.Context, wizard *service.WizardService, catalog *service.CatalogService, p *prompter) error {
	session, _, _, err := wizard.Start(ctx)
	if err != nil {
		return err
	}
	id := session.ID
	defer wizard.Close(context.Background(), id) //nolint:errcheck

	for !session.Step.Terminal() {
		var next *models.WizardSession
		switch session.Step {
		case models.StepTeacherType:
			answer, err := p.ask("Teacher type (school, coaching, personal)")
			if err != nil {
				return err
			}
			next, err = wizard.SetTeacherType(ctx, id, models.TeacherType(strings.ToLower(answer)))
			p.notify(next, err)

		case models.StepSubjectSelection:
			categories, err := catalog.ClassCategories(ctx)
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintf(p.out, "  %d) %s\n", c.ID, c.Name)
			}
			answer, err := p.ask("Class category id")
			if err != nil {
				return err
			}
			categoryID, _ := strconv.Atoi(answer)
			var chosen *models.ClassCategory
			for i := range categories {
				if categories[i].ID == categoryID {
					chosen = &categories[i]
				}
			}
			if chosen == nil {
				fmt.Fprintln(p.out, "[error] unknown class category")
				continue
			}
			for _, s := range chosen.Subjects {
				fmt.Fprintf(p.out, "  %d) %s\n", s.ID, s.Name)
			}
			answer, err = p.ask("Subject ids (comma separated)")
			if err != nil {
				return err
			}
			next, err = wizard.SetSubjects(ctx, id, categoryID, parseIDs(answer))
			p.notify(next, err)

		case models.StepLocation:
			answer, err := p.ask("Pincode")
			if err != nil {
				return err
			}
			next, err = wizard.SetLocation(ctx, id, answer, "")
			p.notify(next, err)
			if err == nil && next.Selection.Area == "" && len(next.Location.Areas) > 1 {
				fmt.Fprintf(p.out, "%s, %s\n", next.Location.City, next.Location.State)
				for i, area := range next.Location.Areas {
					fmt.Fprintf(p.out, "  %d) %s\n", i+1, area)
				}
				answer, err = p.ask("Area number")
				if err != nil {
					return err
				}
				if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(next.Location.Areas) {
					next, err = wizard.SetArea(ctx, id, next.Location.Areas[n-1])
					p.notify(next, err)
				}
			}

		case models.StepResults:
			printResults(p.out, service.ProjectSession(session))
			if session.Search.Status == models.SearchFailed {
				answer, err := p.ask("Search failed. Retry? (y/n)")
				if err != nil {
					return err
				}
				if strings.EqualFold(answer, "y") {
					next, err = wizard.RetrySearch(ctx, id)
					p.notify(next, err)
					if next != nil {
						session = next
					}
					continue
				}
			}

		case models.StepContactInfo:
			email, err := p.ask("Email")
			if err != nil {
				return err
			}
			contact, err := p.ask("Contact number")
			if err != nil {
				return err
			}
			next, err = wizard.Submit(ctx, id, &dto.ContactRequest{Email: email, ContactNumber: contact})
			p.notify(next, err)
			if next != nil {
				session = next
			}
			continue
		}

		if next != nil {
			session = next
		}
		if !service.CanAdvance(session) {
			continue
		}
		advanced, err := wizard.Next(ctx, id)
		if err != nil {
			p.notify(advanced, err)
			if advanced == nil {
				return err
			}
		}
		if advanced != nil {
			session = advanced
		}
	}

	if session.EnquiryID != "" {
		fmt.Fprintf(p.out, "Enquiry reference: %s\n", session.EnquiryID)
	}
	return nil
}

func printResults(out io.Writer, view dto.SessionView) {
	if view.Search == nil {
		return
	}
	fmt.Fprintf(out, "%d teachers found\n", view.Search.Total)
	for _, t := range view.Search.Results {
		fmt.Fprintf(out, "  - %s\n", t.FullName)
	}
}

func parseIDs(raw string) []int {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}
