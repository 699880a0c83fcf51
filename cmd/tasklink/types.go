package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklink/tasklink/internal/application/handlers"
	"github.com/tasklink/tasklink/internal/domain/entities"
)

func newTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage relationship types",
		Long:  "List, add, inspect, update, or delete relationship types. System types cannot be deleted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypeList(cmd, "")
		},
	}

	cmd.AddCommand(newTypeListCmd())
	cmd.AddCommand(newTypeAddCmd())
	cmd.AddCommand(newTypeShowCmd())
	cmd.AddCommand(newTypeUpdateCmd())
	cmd.AddCommand(newTypeDeleteCmd())

	return cmd
}

func newTypeListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List relationship types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypeList(cmd, search)
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive search over type_name and display_name")

	return cmd
}

func runTypeList(cmd *cobra.Command, search string) error {
	ctx := cmd.Context()

	return withTypeHandler(func(handler *handlers.RelationshipTypeHandler) error {
		types, err := handler.HandleList(ctx, search)
		if err != nil {
			return fmt.Errorf("listing types: %w", err)
		}

		if len(types) == 0 {
			fmt.Println("No relationship types found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY\tDIRECTIONAL\tBLOCKING\tSYSTEM")
		for i := range types {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				types[i].TypeName,
				truncate(types[i].DisplayName, 30),
				yesNo(types[i].IsDirectional),
				yesNo(types[i].EnforcesBlocking),
				yesNo(types[i].IsSystem),
			)
		}
		w.Flush()

		return nil
	})
}

type typeAddFlags struct {
	description      string
	directional      bool
	forwardLabel     string
	reverseLabel     string
	blocking         bool
	disabledStatuses []string
	sourceStatuses   []string
}

func newTypeAddCmd() *cobra.Command {
	var flags typeAddFlags

	cmd := &cobra.Command{
		Use:   "add <type_name> <display_name>",
		Short: "Add a relationship type",
		Long: `Adds a new relationship type. The type name must be a lowercase slug.

Directional types need both labels; blocking types need both status sets.

Examples:
  tasklink type add duplicate "Duplicate"
  tasklink type add parent "Parent" --directional --forward-label "is parent of" --reverse-label "is child of"
  tasklink type add gate "Gate" --directional --forward-label gates --reverse-label "gated by" \
    --blocking --blocking-disabled done --blocking-source todo,inprogress`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypeAdd(cmd, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "Type description")
	cmd.Flags().BoolVar(&flags.directional, "directional", false, "Edges of this type have a direction")
	cmd.Flags().StringVar(&flags.forwardLabel, "forward-label", "", "Label seen from the source task")
	cmd.Flags().StringVar(&flags.reverseLabel, "reverse-label", "", "Label seen from the target task")
	cmd.Flags().BoolVar(&flags.blocking, "blocking", false, "Edges of this type block status transitions")
	cmd.Flags().StringSliceVar(&flags.disabledStatuses, "blocking-disabled", nil, "Statuses the target cannot enter while blocked")
	cmd.Flags().StringSliceVar(&flags.sourceStatuses, "blocking-source", nil, "Source statuses that count as blocking")

	return cmd
}

func runTypeAdd(cmd *cobra.Command, typeName, displayName string, flags typeAddFlags) error {
	ctx := cmd.Context()

	return withTypeHandler(func(handler *handlers.RelationshipTypeHandler) error {
		rt, err := handler.HandleCreate(ctx, handlers.CreateTypeParams{
			TypeName:                 typeName,
			DisplayName:              displayName,
			Description:              flags.description,
			IsDirectional:            flags.directional,
			ForwardLabel:             flags.forwardLabel,
			ReverseLabel:             flags.reverseLabel,
			EnforcesBlocking:         flags.blocking,
			BlockingDisabledStatuses: flags.disabledStatuses,
			BlockingSourceStatuses:   flags.sourceStatuses,
		})
		if err != nil {
			return fmt.Errorf("adding type: %w", err)
		}

		fmt.Printf("Added relationship type %s (%s)\n", rt.TypeName, rt.ID)
		return nil
	})
}

func newTypeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show details about a relationship type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypeShow(cmd, args[0])
		},
	}
}

func runTypeShow(cmd *cobra.Command, idOrName string) error {
	ctx := cmd.Context()

	return withTypeHandler(func(handler *handlers.RelationshipTypeHandler) error {
		rt, err := handler.HandleGet(ctx, idOrName)
		if err != nil {
			return fmt.Errorf("fetching type: %w", err)
		}

		fmt.Printf("ID:           %s\n", rt.ID)
		fmt.Printf("Name:         %s\n", rt.TypeName)
		fmt.Printf("Display name: %s\n", rt.DisplayName)
		if rt.Description != "" {
			fmt.Printf("Description:  %s\n", rt.Description)
		}
		fmt.Printf("System:       %v\n", rt.IsSystem)
		fmt.Printf("Directional:  %v\n", rt.IsDirectional)
		if rt.IsDirectional {
			fmt.Printf("Labels:       %q / %q\n", rt.ForwardLabel, rt.ReverseLabel)
		}
		fmt.Printf("Blocking:     %v\n", rt.EnforcesBlocking)
		if rt.EnforcesBlocking {
			fmt.Printf("  Disabled statuses: %s\n", joinStatuses(rt.BlockingDisabledStatuses))
			fmt.Printf("  Source statuses:   %s\n", joinStatuses(rt.BlockingSourceStatuses))
		}
		fmt.Printf("Created:      %s\n", rt.CreatedAt.Format("2006-01-02 15:04:05"))

		return nil
	})
}

func newTypeUpdateCmd() *cobra.Command {
	var (
		displayName      string
		description      string
		directional      bool
		forwardLabel     string
		reverseLabel     string
		blocking         bool
		disabledStatuses []string
		sourceStatuses   []string
	)

	cmd := &cobra.Command{
		Use:   "update <id-or-name>",
		Short: "Update a relationship type",
		Long:  "Updates the given fields. The merged configuration is validated whole, exactly as a new type would be. The type name is immutable.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := handlers.UpdateTypeParams{}
			if cmd.Flags().Changed("display-name") {
				params.DisplayName = &displayName
			}
			if cmd.Flags().Changed("description") {
				params.Description = &description
			}
			if cmd.Flags().Changed("directional") {
				params.IsDirectional = &directional
			}
			if cmd.Flags().Changed("forward-label") {
				params.ForwardLabel = &forwardLabel
			}
			if cmd.Flags().Changed("reverse-label") {
				params.ReverseLabel = &reverseLabel
			}
			if cmd.Flags().Changed("blocking") {
				params.EnforcesBlocking = &blocking
			}
			if cmd.Flags().Changed("blocking-disabled") {
				params.BlockingDisabledStatuses = &disabledStatuses
			}
			if cmd.Flags().Changed("blocking-source") {
				params.BlockingSourceStatuses = &sourceStatuses
			}
			return runTypeUpdate(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "New display name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&directional, "directional", false, "Edges of this type have a direction")
	cmd.Flags().StringVar(&forwardLabel, "forward-label", "", "Label seen from the source task")
	cmd.Flags().StringVar(&reverseLabel, "reverse-label", "", "Label seen from the target task")
	cmd.Flags().BoolVar(&blocking, "blocking", false, "Edges of this type block status transitions")
	cmd.Flags().StringSliceVar(&disabledStatuses, "blocking-disabled", nil, "Statuses the target cannot enter while blocked")
	cmd.Flags().StringSliceVar(&sourceStatuses, "blocking-source", nil, "Source statuses that count as blocking")

	return cmd
}

func runTypeUpdate(cmd *cobra.Command, idOrName string, params handlers.UpdateTypeParams) error {
	ctx := cmd.Context()

	return withTypeHandler(func(handler *handlers.RelationshipTypeHandler) error {
		rt, err := handler.HandleGet(ctx, idOrName)
		if err != nil {
			return fmt.Errorf("fetching type: %w", err)
		}

		updated, err := handler.HandleUpdate(ctx, rt.ID, params)
		if err != nil {
			return fmt.Errorf("updating type: %w", err)
		}

		fmt.Printf("Updated relationship type %s\n", updated.TypeName)
		return nil
	})
}

func newTypeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a relationship type",
		Long:  "Deletes a relationship type and every relationship using it. System types cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypeDelete(cmd, args[0])
		},
	}
}

func runTypeDelete(cmd *cobra.Command, idOrName string) error {
	ctx := cmd.Context()

	return withTypeHandler(func(handler *handlers.RelationshipTypeHandler) error {
		rt, err := handler.HandleGet(ctx, idOrName)
		if err != nil {
			return fmt.Errorf("fetching type: %w", err)
		}

		if err := handler.HandleDelete(ctx, rt.ID); err != nil {
			return fmt.Errorf("deleting type: %w", err)
		}

		fmt.Printf("Deleted relationship type %s\n", rt.TypeName)
		return nil
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func joinStatuses(set entities.StatusSet) string {
	parts := make([]string, len(set))
	for i, s := range set {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
