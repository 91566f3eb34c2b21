package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the ingested courses",
	RunE:  runCourses,
}

func init() {
	rootCmd.AddCommand(coursesCmd)
}

func runCourses(cmd *cobra.Command, _ []string) error {
	if ragService == nil {
		return errors.New("rag service not configured")
	}

	analytics, err := ragService.CourseAnalytics(context.Background())
	if err != nil {
		return fmt.Errorf("analytics failed: %w", err)
	}

	cmd.Printf("Total courses: %d\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		cmd.Printf("  - %s\n", title)
	}
	return nil
}
