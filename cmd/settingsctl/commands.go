package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
	"github.com/smb564/21-points/internal/view"
)

func (a *app) newListController(scope *view.Scope, size int) *view.ListController {
	return view.NewListController(scope, a.bus, a.topic,
		a.client.UserSettings(), a.client.UserSettingsSearch(), size, a.log)
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", 0, "Zero-based page")
	size := fs.Int("size", view.DefaultPageSize, "Page size")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	scope := view.NewScope()
	defer scope.Destroy()
	lc := a.newListController(scope, *size)

	if err := lc.Transition(ctx, *page); err != nil {
		return err
	}
	printList(a.out, lc)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	size := fs.Int("size", view.DefaultPageSize, "Page size")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return errUsage
	}

	scope := view.NewScope()
	defer scope.Destroy()
	lc := a.newListController(scope, *size)

	if err := lc.Search(ctx, strings.Join(fs.Args(), " ")); err != nil {
		return err
	}
	printList(a.out, lc)
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	s, err := a.fetch(ctx, id)
	if err != nil {
		return err
	}

	scope := view.NewScope()
	defer scope.Destroy()
	dc := view.NewDetailController(scope, a.bus, a.topic, s, "list", a.log)
	printDetail(a.out, dc.UserSettings())
	return nil
}

func (a *app) set(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Record to edit; omit to create")
	goal := fs.Int("goal", -1, "Weekly goal in points (at least 10)")
	unit := fs.String("unit", "", "Weight unit: KG or LB")
	reminder := fs.String("reminder", "", "Reminder time, HH:mm")
	user := fs.Int64("user", 0, "Owning user id")
	if err := fs.Parse(args); err != nil || fs.NArg() > 0 {
		return errUsage
	}

	var entity *model.UserSettings
	if *id != 0 {
		s, err := a.fetch(ctx, *id)
		if err != nil {
			return err
		}
		entity = s
	}

	dialog := &terminalDialog{}
	ec := view.NewEditController(entity, a.client.UserSettings(), a.bus, a.topic, dialog, a.log)
	if err := applyEdits(ec.UserSettings(), *goal, *unit, *reminder, *user); err != nil {
		return err
	}

	if err := ec.Save(ctx); err != nil {
		return err
	}
	saved, _ := dialog.result.(*model.UserSettings)
	if saved == nil {
		return errors.New("save did not return a record")
	}
	printDetail(a.out, saved)
	return nil
}

// applyEdits copies the flags that were set onto s.
func applyEdits(s *model.UserSettings, goal int, unit, reminder string, user int64) error {
	if goal >= 0 {
		s.WeeklyGoal = &goal
	}
	if unit != "" {
		u := model.WeightUnit(strings.ToUpper(unit))
		if !u.Valid() {
			return fmt.Errorf("unknown weight unit %q", unit)
		}
		s.WeightUnit = &u
	}
	if reminder != "" {
		s.ReminderTime = reminder
	}
	if user != 0 {
		s.User = &model.UserRef{ID: user}
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("y", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}
	s, err := a.fetch(ctx, id)
	if err != nil {
		return err
	}

	dialog := &terminalDialog{}
	dc := view.NewDeleteController(s, a.client.UserSettings(), dialog, a.log)

	ok := *yes
	if !ok {
		if !a.interactive {
			return errors.New("refusing to delete without -y when stdin is not a terminal")
		}
		printDetail(a.out, s)
		if ok, err = confirm(a.in, a.out, fmt.Sprintf("Delete user settings %d?", id)); err != nil {
			return err
		}
	}
	if !ok {
		dc.Clear()
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := dc.ConfirmDelete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted user settings %d.\n", id)
	return nil
}

// watch shows one record and reprints the detail view whenever the server
// reports a save.
func (a *app) watch(ctx context.Context, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	s, err := a.fetch(ctx, id)
	if err != nil {
		return err
	}

	scope := view.NewScope()
	defer scope.Destroy()

	// The controller takes any update, so it only sees the watched record.
	watched := eventbus.New(a.log)
	scope.OnDestroy(followRecord(a.bus, watched, a.topic, id).Unsubscribe)

	dc := view.NewDetailController(scope, watched, a.topic, s, "list", a.log)
	printDetail(a.out, dc.UserSettings())

	// Subscribed after the controller, so it prints the replaced entity.
	sub := eventbus.Subscribe(watched, a.topic, func(*model.UserSettings) {
		fmt.Fprintln(a.out)
		printDetail(a.out, dc.UserSettings())
	})
	scope.OnDestroy(sub.Unsubscribe)

	return a.client.NewUpdateStream(a.bus, a.topic).Run(ctx)
}

// followRecord republishes updates to record id from src onto dst.
func followRecord(src, dst *eventbus.Bus, topic string, id int64) *eventbus.Subscription {
	return eventbus.Subscribe(src, topic, func(s *model.UserSettings) {
		if s != nil && s.ID == id {
			dst.Publish(topic, s)
		}
	})
}

// fetch loads one record; an empty response counts as not found.
func (a *app) fetch(ctx context.Context, id int64) (*model.UserSettings, error) {
	s, err := a.client.UserSettings().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("user settings %d: %w", id, client.ErrNotFound)
	}
	return s, nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printList(out io.Writer, lc *view.ListController) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWEEKLY GOAL\tWEIGHT UNIT\tREMINDER\tUSER")
	for _, s := range lc.UserSettings() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, goalText(&s), unitText(&s), orDash(s.ReminderTime), userText(&s))
	}
	_ = tw.Flush()

	if total := lc.TotalItems(); total >= 0 {
		fmt.Fprintf(out, "page %d, %d total\n", lc.Page(), total)
	}
}

func printDetail(out io.Writer, s *model.UserSettings) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", s.ID)
	fmt.Fprintf(tw, "Weekly goal\t%s\n", goalText(s))
	fmt.Fprintf(tw, "Weight unit\t%s\n", unitText(s))
	fmt.Fprintf(tw, "Reminder time\t%s\n", orDash(s.ReminderTime))
	fmt.Fprintf(tw, "User\t%s\n", userText(s))
	_ = tw.Flush()
}

func goalText(s *model.UserSettings) string {
	if s.WeeklyGoal == nil {
		return "-"
	}
	return strconv.Itoa(*s.WeeklyGoal)
}

func unitText(s *model.UserSettings) string {
	if s.WeightUnit == nil {
		return "-"
	}
	return string(*s.WeightUnit)
}

func userText(s *model.UserSettings) string {
	switch {
	case s.User == nil:
		return "-"
	case s.User.Login != "":
		return s.User.Login
	default:
		return strconv.FormatInt(s.User.ID, 10)
	}
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
