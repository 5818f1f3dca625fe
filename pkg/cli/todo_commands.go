package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fluxorio/todos/pkg/todo"
	"github.com/spf13/pflag"
)

const displayTime = "2006-01-02 15:04:05"

func (a *App) addCommand() *Command {
	var description string
	var fs *pflag.FlagSet

	return &Command{
		Name:    "add",
		Summary: "Add a new todo item",
		Usage:   "todo add TITLE [-d DESCRIPTION]",
		Examples: []Example{
			{Description: "Add a todo with a description", Command: `todo add "Buy milk" -d "2 liters"`},
		},
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("add", pflag.ContinueOnError)
			fs.StringVarP(&description, "description", "d", "", "description of the todo item")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "TITLE"); err != nil {
				return err
			}
			uc, err := a.useCases()
			if err != nil {
				return err
			}

			var desc *string
			if fs.Changed("description") {
				desc = &description
			}
			created, err := uc.Create.Execute(a.ctx, args[0], desc)
			if err != nil {
				return err
			}

			s := newStyles(a.Out)
			fmt.Fprintf(a.Out, "%s ID=%s, Title='%s'\n",
				s.success.Render("Todo added:"), s.id.Render(created.ID), created.Title)
			return nil
		},
	}
}

func (a *App) listCommand() *Command {
	var asJSON bool

	return &Command{
		Name:    "list",
		Summary: "List all todo items",
		Usage:   "todo list [--json]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0); err != nil {
				return err
			}
			uc, err := a.useCases()
			if err != nil {
				return err
			}
			todos, err := uc.List.Execute(a.ctx)
			if err != nil {
				return err
			}

			if asJSON {
				if todos == nil {
					todos = []todo.Todo{}
				}
				return a.writeJSON(todos)
			}

			s := newStyles(a.Out)
			if len(todos) == 0 {
				fmt.Fprintln(a.Out, s.warning.Render("No todo items found."))
				return nil
			}
			fmt.Fprintln(a.Out, s.header.Render("Todo List"))
			fmt.Fprintln(a.Out, renderTable(s, todos))
			return nil
		},
	}
}

func renderTable(s styles, todos []todo.Todo) string {
	columns := []lipgloss.Style{s.id, s.title, lipgloss.NewStyle(), lipgloss.NewStyle(), s.created}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Description", "Completed", "Created At").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.label.Padding(0, 1)
			}
			return columns[col].Padding(0, 1)
		})
	for _, item := range todos {
		t.Row(
			item.ID,
			item.Title,
			item.DescriptionOr(""),
			s.completed(item.Completed),
			item.CreatedAt.Local().Format(displayTime),
		)
	}
	return t.Render()
}

func (a *App) getCommand() *Command {
	var asJSON bool

	return &Command{
		Name:    "get",
		Summary: "Get a specific todo item by ID",
		Usage:   "todo get ID [--json]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("get", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "ID"); err != nil {
				return err
			}
			uc, err := a.useCases()
			if err != nil {
				return err
			}
			item, found, err := uc.Get.Execute(a.ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return a.notFound(args[0], nil)
			}

			if asJSON {
				return a.writeJSON(item)
			}

			s := newStyles(a.Out)
			fmt.Fprintln(a.Out, s.success.Render("Todo Found:"))
			fmt.Fprintf(a.Out, "  %s %s\n", s.label.Render("ID:"), s.id.Render(item.ID))
			fmt.Fprintf(a.Out, "  %s %s\n", s.label.Render("Title:"), item.Title)
			fmt.Fprintf(a.Out, "  %s %s\n", s.label.Render("Description:"), item.DescriptionOr("N/A"))
			fmt.Fprintf(a.Out, "  %s %s\n", s.label.Render("Completed:"), s.yesNo(item.Completed))
			fmt.Fprintf(a.Out, "  %s %s\n", s.label.Render("Created At:"), s.created.Render(item.CreatedAt.Local().Format(displayTime)))
			return nil
		},
	}
}

func (a *App) updateCommand() *Command {
	var (
		title            string
		description      string
		clearDescription bool
		completed        bool
		notCompleted     bool
		fs               *pflag.FlagSet
	)

	return &Command{
		Name:    "update",
		Summary: "Update an existing todo item",
		Usage:   "todo update ID [-t TITLE] [-d DESCRIPTION | --clear-description] [-c | -n]",
		Examples: []Example{
			{Description: "Mark a todo as done", Command: "todo update 3f2a... --completed"},
			{Description: "Rename and drop the description", Command: `todo update 3f2a... -t "Buy oat milk" --clear-description`},
		},
		Flags: func() *pflag.FlagSet {
			fs = pflag.NewFlagSet("update", pflag.ContinueOnError)
			fs.StringVarP(&title, "title", "t", "", "new title for the todo item")
			fs.StringVarP(&description, "description", "d", "", "new description for the todo item")
			fs.BoolVar(&clearDescription, "clear-description", false, "remove the description")
			fs.BoolVarP(&completed, "completed", "c", false, "mark the todo as completed")
			fs.BoolVarP(&notCompleted, "not-completed", "n", false, "mark the todo as not completed")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "ID"); err != nil {
				return err
			}

			var in todo.UpdateInput
			if fs.Changed("title") {
				in.Title = todo.Some(title)
			}
			switch {
			case fs.Changed("description") && clearDescription:
				return fmt.Errorf("--description and --clear-description are mutually exclusive")
			case fs.Changed("description"):
				in.Description = todo.Some(todo.StringPtr(description))
			case clearDescription:
				in.Description = todo.Some[*string](nil)
			}
			switch {
			case completed && notCompleted:
				return fmt.Errorf("--completed and --not-completed are mutually exclusive")
			case completed:
				in.Completed = todo.Some(true)
			case notCompleted:
				in.Completed = todo.Some(false)
			}

			if in.Empty() {
				s := newStyles(a.Out)
				fmt.Fprintln(a.Out, s.warning.Render(
					"No update parameters provided. Use --title, --description, or --completed/--not-completed."))
				return nil
			}

			uc, err := a.useCases()
			if err != nil {
				return err
			}
			updated, err := uc.Update.Execute(a.ctx, args[0], in)
			if err != nil {
				return a.notFound(args[0], err)
			}

			s := newStyles(a.Out)
			fmt.Fprintf(a.Out, "%s ID=%s, Title='%s'\n",
				s.success.Render("Todo updated:"), s.id.Render(updated.ID), updated.Title)
			return nil
		},
	}
}

func (a *App) deleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete a todo item by ID",
		Usage:   "todo delete ID",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "ID"); err != nil {
				return err
			}
			uc, err := a.useCases()
			if err != nil {
				return err
			}
			if err := uc.Delete.Execute(a.ctx, args[0]); err != nil {
				return a.notFound(args[0], err)
			}

			s := newStyles(a.Out)
			fmt.Fprintln(a.Out, s.success.Render(fmt.Sprintf("Todo with ID %s deleted successfully.", args[0])))
			return nil
		},
	}
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
