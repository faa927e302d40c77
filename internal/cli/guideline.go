package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGuidelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guideline",
		Short: "Manage comp selection guidelines",
		Long:  "Add, list, and remove natural-language guidelines that steer comp selection, e.g. \"only use comps within 0.5 miles\".",
	}

	cmd.AddCommand(
		newGuidelineAddCmd(),
		newGuidelineListCmd(),
		newGuidelineRemoveCmd(),
	)

	return cmd
}

func newGuidelineAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <instruction>",
		Short: "Add a guideline from a natural-language instruction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuidelineAdd(strings.Join(args, " "))
		},
	}
}

func newGuidelineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored guidelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuidelineList()
		},
	}
}

func newGuidelineRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove a guideline by its list index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			return runGuidelineRemove(index)
		},
	}
}

func runGuidelineAdd(instruction string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openGuidelines(cfg, logger)
	if err != nil {
		return err
	}

	ok, err := store.AddInstruction(instruction)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("could not extract any criteria from %q", instruction)
	}
	fmt.Println("Guideline added")
	return nil
}

func runGuidelineList() error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openGuidelines(cfg, logger)
	if err != nil {
		return err
	}

	list := store.List()
	if isJSON() {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No guidelines stored")
		return nil
	}
	for i, g := range list {
		fmt.Printf("%d. %s (priority %.1f, used %d times)\n", i, g.Description, g.Priority, g.UsageCount)
	}
	return nil
}

func runGuidelineRemove(index int) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openGuidelines(cfg, logger)
	if err != nil {
		return err
	}

	ok, err := store.Remove(index)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no guideline at index %d", index)
	}
	fmt.Println("Guideline removed")
	return nil
}
