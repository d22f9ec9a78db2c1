package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/wa-relay/internal/service/outbound"
)

func newDispatchCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "dispatch [instruction]",
		Short: "Print the WhatsApp message a RapidPro instruction would produce",
		Long:  "Parses an instruction exactly like the callback endpoint does and prints the Graph API body without sending it. Use - to read the instruction from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read instruction: %w", err)
				}
				raw = string(data)
			}

			msg, err := outbound.Dispatch(to, raw)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), msg)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient phone number")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
