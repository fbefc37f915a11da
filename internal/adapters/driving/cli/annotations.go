package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var annotationsCmd = &cobra.Command{
	Use:   "annotations",
	Short: "Manage stored annotations",
	Long:  `List, comment on, or delete the annotations stored for a document.`,
}

var annotationsListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List annotations for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotationsList,
}

var annotationsCommentCmd = &cobra.Command{
	Use:   "comment [annotation-id] [text]",
	Short: "Set the comment on an annotation",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnnotationsComment,
}

var annotationsDeleteCmd = &cobra.Command{
	Use:   "delete [annotation-id]",
	Short: "Delete an annotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotationsDelete,
}

func init() {
	annotationsCmd.AddCommand(annotationsListCmd)
	annotationsCmd.AddCommand(annotationsCommentCmd)
	annotationsCmd.AddCommand(annotationsDeleteCmd)
	rootCmd.AddCommand(annotationsCmd)
}

func runAnnotationsList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := buildAnnotationStore()
	if err != nil {
		return err
	}
	defer closeStore()

	paperID, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	list, err := store.List(context.Background(), paperID)
	if err != nil {
		return fmt.Errorf("failed to list annotations: %w", err)
	}

	if len(list) == 0 {
		cmd.Printf("No annotations found for: %s\n", args[0])
		return nil
	}

	cmd.Printf("Annotations for %s:\n\n", args[0])
	for i := range list {
		a := &list[i]
		cmd.Printf("  %s\n", a.ID)
		cmd.Printf("    Kind: %s  Page: %d  Created: %s\n",
			a.Kind, a.Page, a.CreatedAt.Format(time.RFC3339))
		if a.Text != "" {
			cmd.Printf("    Text: %s\n", excerptOf(a.Text))
		}
		if a.Comment != "" {
			cmd.Printf("    Comment: %s\n", a.Comment)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d annotations\n", len(list))
	return nil
}

func runAnnotationsComment(cmd *cobra.Command, args []string) error {
	store, closeStore, err := buildAnnotationStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	annotation, err := store.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load annotation: %w", err)
	}

	annotation.Comment = args[1]
	annotation.UpdatedAt = time.Now()
	if err := store.Update(ctx, annotation); err != nil {
		return fmt.Errorf("failed to update annotation: %w", err)
	}

	cmd.Printf("Updated annotation: %s\n", annotation.ID)
	return nil
}

func runAnnotationsDelete(cmd *cobra.Command, args []string) error {
	store, closeStore, err := buildAnnotationStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}

	cmd.Printf("Deleted annotation: %s\n", args[0])
	return nil
}

// excerptOf flattens and shortens captured text for display.
func excerptOf(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) > 72 {
		flat = flat[:69] + "..."
	}
	return flat
}
