package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"invoicectl/internal/api"
	"invoicectl/internal/logger"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [invoice-id]",
	Short: "Delete a stored invoice",
	Long:  `Delete an invoice by its identifier. Asks for confirmation unless --yes is given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	deleteCmd.Flags().Int("timeout", 120, "Command timeout in seconds")
}

func runDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("delete")

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid invoice identifier %q", args[0])
	}

	confirmed, _ := cmd.Flags().GetBool("yes")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if !confirmed {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete invoice %d? [y/N] ", id)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(timeoutSecs, log)
	defer cancel()

	if err := client.DeleteInvoice(ctx, id); err != nil {
		log.Error().Err(err).Int64("invoice_id", id).Msg("Invoice deletion failed")
		return fmt.Errorf("%s", api.UserMessage(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Invoice %d deleted.\n", id)
	log.Info().Int64("invoice_id", id).Msg("Invoice deleted")
	return nil
}
