package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/models"
	"github.com/spf13/cobra"
)

func eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "System audit event commands",
	}
	cmd.AddCommand(eventsListCommand())
	return cmd
}

func eventsListCommand() *cobra.Command {
	var limit int
	var eventTypes []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List system audit events",
		Long:  "Prints the recorded system audit events, oldest first, one JSON object per line.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, persistence, err := loadPersistence(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := persistence.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			filter := db.SystemEventQueryFilter{}
			if limit > 0 {
				filter.Limit = &limit
			}
			for _, eventType := range eventTypes {
				if !models.IsKnownSystemEventType(eventType) {
					return fmt.Errorf("unknown event type '%s'", eventType)
				}
				filter.EventTypes = append(filter.EventTypes, models.SystemEventTypeENUMType(eventType))
			}

			var events []models.SystemEventAudit
			if err := persistence.UseDatabase(
				cmd.Context(),
				func(ctx context.Context, dbClient db.Database) error {
					events, err = dbClient.ListSystemEvents(ctx, filter)
					return err
				},
			); err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, event := range events {
				if err := encoder.Encode(event); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max number of events to print; 0 prints all")
	cmd.Flags().StringSliceVarP(
		&eventTypes, "type", "t", nil,
		fmt.Sprintf("only print these event types (%s)", strings.Join(knownEventTypeNames(), ", ")),
	)
	return cmd
}

func knownEventTypeNames() []string {
	names := []string{}
	for _, eventType := range models.KnownSystemEventTypes() {
		names = append(names, string(eventType))
	}
	return names
}
