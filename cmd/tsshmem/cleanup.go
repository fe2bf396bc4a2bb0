package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yb-tserver/shmexchange/internal/shmexchange"
)

func newCleanupCmd() *cobra.Command {
	var instanceID string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove every orphaned shared-memory segment for an instance id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if instanceID == "" {
				return fmt.Errorf("--instance-id is required")
			}
			if err := shmexchange.Cleanup(instanceID); err != nil {
				return err
			}
			fmt.Printf("cleaned up segments for instance %q\n", instanceID)
			return nil
		},
	}
	cmd.Flags().StringVar(&instanceID, "instance-id", "", "tablet-server instance id whose segments should be purged")
	return cmd
}
