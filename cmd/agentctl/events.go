package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"fieldforce/internal/agent/events"
	"fieldforce/internal/platform/config"
	"fieldforce/internal/platform/kafka/consumer"
	"fieldforce/internal/platform/logger"
)

var errLimitReached = errors.New("event limit reached")

type eventsOptions struct {
	brokers   []string
	topic     string
	group     string
	fromStart bool
	limit     int
}

func newEventsCmd() *cobra.Command {
	var opts eventsOptions

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow agent lifecycle events",
		Long:  "Consumes the agent events topic and prints one line per event until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvents(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.brokers, "brokers", nil, "Kafka brokers (defaults to KAFKA_BROKERS)")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "Events topic (defaults to AGENT_EVENTS_TOPIC)")
	cmd.Flags().StringVar(&opts.group, "group", "", "Consumer group; offsets are committed when set")
	cmd.Flags().BoolVar(&opts.fromStart, "from-beginning", false, "Start from the earliest offset")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Stop after this many events (0 means no limit)")

	return cmd
}

func runEvents(cmd *cobra.Command, opts eventsOptions) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(opts.brokers) == 0 {
		opts.brokers = cfg.Kafka.Brokers
	}
	if opts.topic == "" {
		opts.topic = cfg.Kafka.EventsTopic
	}
	if len(opts.brokers) == 0 {
		return errors.New("no kafka brokers: set KAFKA_BROKERS or --brokers")
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
	printer := &eventPrinter{w: cmd.OutOrStdout(), limit: opts.limit}
	c, err := consumer.New(consumer.Config{
		Brokers:   opts.brokers,
		GroupID:   opts.group,
		Topics:    []string{opts.topic},
		FromStart: opts.fromStart,
	}, printer, log)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Run(cmd.Context()); err != nil && !errors.Is(err, errLimitReached) {
		return err
	}
	return nil
}

// eventPrinter writes one line per event. Undecodable records are reported and skipped.
type eventPrinter struct {
	w     io.Writer
	limit int
	seen  int
}

func (p *eventPrinter) Handle(_ context.Context, msg *consumer.Message) error {
	ev, err := events.Decode(msg.Value)
	if err != nil {
		fmt.Fprintf(p.w, "%s/%d@%d: %v\n", msg.Topic, msg.Partition, msg.Offset, err)
		return nil
	}
	fmt.Fprintf(p.w, "%s  %-17s  %s  %-8s  %s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.AgentID, ev.IdentityType, ev.RequestID)

	p.seen++
	if p.limit > 0 && p.seen >= p.limit {
		return errLimitReached
	}
	return nil
}
