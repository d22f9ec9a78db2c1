package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/domain/schema"
	"github.com/mamadbah2/wa-relay/internal/repository/mongodb"
	"github.com/mamadbah2/wa-relay/internal/service/businesses"
)

func newBusinessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "business",
		Short: "Manage the business registry",
	}

	cmd.AddCommand(newBusinessRegisterCmd())
	cmd.AddCommand(newBusinessListCmd())
	cmd.AddCommand(newBusinessGetCmd())
	return cmd
}

// withRegistry opens the registry for the duration of fn.
func withRegistry(cmd *cobra.Command, fn func(ctx context.Context, svc *businesses.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close(context.Background()) }()

	return fn(ctx, businesses.NewService(repo, log.Named("svc.businesses")))
}

func newBusinessRegisterCmd() *cobra.Command {
	var business models.Business

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a business and its RapidPro channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := schema.Struct(business); err != nil {
				return err
			}
			return withRegistry(cmd, func(ctx context.Context, svc *businesses.Service) error {
				registered, err := svc.Register(ctx, business)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), registered)
			})
		},
	}

	cmd.Flags().StringVar(&business.Name, "name", "", "business name")
	cmd.Flags().StringVar(&business.OwnerID, "owner", "", "owner id")
	cmd.Flags().StringVar(&business.BusinessID, "phone-number-id", "", "WhatsApp phone number id")
	cmd.Flags().StringVar(&business.PhoneNumber, "phone", "", "WhatsApp number without +")
	cmd.Flags().StringVar(&business.RapidProChannel, "channel", "", "RapidPro external channel uuid")
	cmd.Flags().StringVar(&business.SubscriptionPlan, "plan", "basic", "subscription plan")

	return cmd
}

func newBusinessListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered businesses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd, func(ctx context.Context, svc *businesses.Service) error {
				all, err := svc.List(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, b := range all {
					fmt.Fprintf(out, "%-32s %-18s %-14s %s\n", b.ID, b.BusinessID, b.PhoneNumber, b.RapidProChannel)
				}
				return nil
			})
		},
	}
}

func newBusinessGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !strings.HasPrefix(id, "businesses/") {
				id = businesses.DocumentID(id)
			}
			return withRegistry(cmd, func(ctx context.Context, svc *businesses.Service) error {
				business, err := svc.Get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), business)
			})
		},
	}
}
