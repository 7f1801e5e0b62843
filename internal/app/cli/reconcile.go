package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

func (a *App) newReconcileCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "reconcile",
		Short: "Finish interrupted cascade deletes now",
		Long: `Run one reconcile pass: every live document whose parent is deleted is
deleted with the parent's batch. The server's worker does the same on a
schedule.`,
		Args: cobra.NoArgs,
		RunE: a.runReconcile,
	}
	c.Flags().String("workspace", "", "Limit the pass to one workspace id")
	return c
}

func (a *App) runReconcile(cmd *cobra.Command, args []string) error {
	var wsID *primitive.ObjectID
	if raw, _ := cmd.Flags().GetString("workspace"); strings.TrimSpace(raw) != "" {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid workspace id %q", raw)
		}
		wsID = &oid
	}

	return a.withBackend(cmd, func(ctx context.Context, b *Backend) error {
		report, err := b.Docs.Reconcile(ctx, wsID)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(a.out)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	})
}
