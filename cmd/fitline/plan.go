package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/naveenspark/fitline/pkg/client"
	"github.com/naveenspark/fitline/pkg/domain"
	"github.com/naveenspark/fitline/pkg/workout"
)

func (a *app) runPlan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.showPlan()
	}
	switch args[0] {
	case "generate":
		return a.generatePlan(ctx, args[1:])
	case "show":
		return a.showPlan()
	case "export":
		return a.exportPlan(args[1:])
	case "import":
		return a.importPlan(args[1:])
	}
	return fmt.Errorf("unknown plan command %q (generate, show, export, import)", args[0])
}

// generatePlan builds a plan from the server catalog. Goal and level fall
// back to the member's profile.
func (a *app) generatePlan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan generate", flag.ContinueOnError)
	fs.SetOutput(a.out)
	goal := fs.String("goal", "", "training goal (default: from your profile)")
	level := fs.String("level", "", "experience level (default: from your profile)")
	days := fs.Int("days", workout.DefaultDays, fmt.Sprintf("training days, %d-%d", workout.MinDays, workout.MaxDays))
	equipment := fs.String("equipment", "", "only exercises using this equipment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	p := workout.Preferences{
		Goal:      domain.Goal(*goal),
		Level:     domain.Level(*level),
		Days:      *days,
		Equipment: *equipment,
	}
	if p.Goal == "" || p.Level == "" {
		me, err := a.client.GetMe(ctx)
		if err != nil {
			return err
		}
		if p.Goal == "" {
			p.Goal = me.FitnessGoal
		}
		if p.Level == "" {
			p.Level = me.ExperienceLevel
		}
	}
	if err := p.Validate(); err != nil {
		return err
	}

	catalog, err := a.client.ListExercises(ctx, client.ExerciseFilter{Equipment: p.Equipment})
	if err != nil {
		return err
	}
	plan, err := workout.Generate(p, catalog, nil)
	if err != nil {
		return err
	}
	if err := a.db.SaveWorkoutPlan(plan); err != nil {
		return err
	}
	a.log.Info("plan generated", "goal", p.Goal, "level", p.Level, "days", p.Days, "catalog", len(catalog))
	fmt.Fprint(a.out, workout.Text(plan))
	fmt.Fprintf(a.out, "\n%s\n", motivation())
	return nil
}

var errNoPlan = errors.New("no saved plan, run: fitline plan generate")

func (a *app) savedPlan() (*domain.WorkoutPlan, error) {
	plan, err := a.db.WorkoutPlan()
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, errNoPlan
	}
	return plan, nil
}

func (a *app) showPlan() error {
	plan, err := a.savedPlan()
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, workout.Text(plan))
	return nil
}

// exportPlan writes the saved plan as YAML to the named file, or stdout.
func (a *app) exportPlan(args []string) error {
	plan, err := a.savedPlan()
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		return workout.ExportYAML(a.out, plan)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	if err := workout.ExportYAML(f, plan); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Plan written to %s\n", args[0])
	return nil
}

func (a *app) importPlan(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: fitline plan import <file.yaml>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close() //nolint:errcheck

	plan, err := workout.ImportYAML(f)
	if err != nil {
		return err
	}
	if len(plan.Routines) == 0 {
		return fmt.Errorf("%s has no routines", args[0])
	}
	if err := a.db.SaveWorkoutPlan(plan); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %q with %d days\n", plan.Name, len(plan.Routines))
	return nil
}
