package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mavmaso/ficherors/internal/csvio"
	"github.com/mavmaso/ficherors/internal/logger"
)

var seedOpts struct {
	output string
	rows   int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write a demo contact list for trying out process and verify",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := demoList(seedOpts.rows)

		if seedOpts.output == "" || seedOpts.output == "-" {
			return csvio.Write(cmd.OutOrStdout(), rows)
		}

		f, err := os.Create(seedOpts.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", seedOpts.output, err)
		}
		defer f.Close()

		if err := csvio.Write(f, rows); err != nil {
			return err
		}
		logger.Log.Info("seed completed", zap.String("output", seedOpts.output), zap.Int("rows", len(rows)-1))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedOpts.output, "output", "o", "", "file to write (default stdout)")
	seedCmd.Flags().IntVar(&seedOpts.rows, "rows", 5, "number of contacts")
}

type demoContact struct {
	phone string // local format, with the usual separators
	name  string
	city  string
}

// demoContacts are deterministic Brazilian contacts (country BR).
var demoContacts = []demoContact{
	{"(11) 97205-7032", "Ana Paula Souza", "São Paulo"},
	{"21 98765 4321", "Bruno Lima", "Rio de Janeiro"},
	{"031 3222-1100", "Carla Dias", "Belo Horizonte"},
	{"+55 61 99888 7766", "Diego Alves", "Brasília"},
	{"51 3333-4444", "Elisa Prado", "Porto Alegre"},
}

// demoList builds n contacts (header first), cycling through demoContacts
// and varying the last digits so every destination is distinct.
func demoList(n int) [][]string {
	if n < 0 {
		n = 0
	}
	out := make([][]string, 0, n+1)
	out = append(out, []string{"phone", "name", "city", "customer_id"})
	for i := 0; i < n; i++ {
		c := demoContacts[i%len(demoContacts)]
		phone := c.phone
		if round := i / len(demoContacts); round > 0 {
			phone = phone[:len(phone)-2] + fmt.Sprintf("%02d", round%100)
		}
		out = append(out, []string{phone, c.name, c.city, strconv.Itoa(1000 + i)})
	}
	return out
}
