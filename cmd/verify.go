package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/metrics"
)

var errListInvalid = errors.New("list has problems")

var verifyInput string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report every problem of a contact list as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(verifyInput)
		if err != nil {
			return fmt.Errorf("%w: %v", csvio.ErrSourceNotFound, err)
		}

		rep := csvio.Verify(string(b))
		metrics.ListsTotal.WithLabelValues("verify", result(rep.Valid)).Inc()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
		if !rep.Valid {
			return errListInvalid
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyInput, "input", "i", "", "contact list to check")
	_ = verifyCmd.MarkFlagRequired("input")
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
