package commands

import (
	"errors"
	"fmt"
	"strconv"

	"gaiaharvest/internal/store"
	"gaiaharvest/pkg/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <table id>",
	Short: "Prints a stored match.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tableID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid table id", err)
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		m, err := a.store.Get(cmd.Context(), tableID)
		if errors.Is(err, store.ErrNotFound) {
			serviceutil.Fatal("not found", fmt.Errorf("table %d has not been collected", tableID))
		}
		if err != nil {
			serviceutil.Fatal("failed to load match", err)
		}
		renderMatch(m)
	},
}
