package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yb-tserver/shmexchange/internal/shmexchange"
)

// newProbeCmd drives one request/response round trip end to end and
// reports what happened at each step.
func newProbeCmd() *cobra.Command {
	var (
		instanceID string
		sessionID  uint64
		size       int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Create one exchange, send a synthetic request/response, report the sizes observed",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			defer logger.Sync()

			owner := shmexchange.NewOwnerEndpoint(instanceID, sessionID, shmexchange.Options{Logger: logger})
			defer owner.Close()

			client := shmexchange.NewClientEndpoint(instanceID, sessionID, shmexchange.Options{Logger: logger})
			defer client.Close()

			listener := shmexchange.NewListener(owner, func(n int) {
				fmt.Printf("server observed request of %d bytes\n", n)
				owner.Respond(n)
			})
			defer listener.Close()

			buf, ok := client.Obtain(size)
			if !ok {
				return fmt.Errorf("probe payload of %d bytes does not fit the segment", size)
			}
			for i := range buf {
				buf[i] = byte(i)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			reply, err := client.Send(ctx)
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}
			if reply.Oversize {
				fmt.Printf("reply oversize: reported %d bytes\n", reply.Size)
				return nil
			}
			fmt.Printf("client received reply of %d bytes\n", reply.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&instanceID, "instance-id", "probe", "instance id to use for the probe segment")
	cmd.Flags().Uint64Var(&sessionID, "session-id", uint64(time.Now().UnixNano()), "session id to use for the probe segment")
	cmd.Flags().IntVar(&size, "size", 64, "synthetic request payload size in bytes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable development-mode logging")
	return cmd
}
