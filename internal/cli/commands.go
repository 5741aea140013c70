package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricofy/product-catalog/internal/config"
	"github.com/pricofy/product-catalog/internal/domain"
	"github.com/pricofy/product-catalog/internal/handler"
	"github.com/pricofy/product-catalog/internal/obs"
)

func newServeCommand(v *viper.Viper, flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := v.GetString(config.KeyHTTPAddr)
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler.NewHTTPHandler(a.Handler),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				obs.Logger.Info("http_listen", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigc)

			select {
			case err := <-errc:
				return err
			case s := <-sigc:
				obs.Logger.Info("shutdown_signal", "signal", s.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				obs.Logger.Error("http_shutdown_error", "error", err)
			}
			obs.Logger.Info("service_stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.HTTPAddr, "addr", "", "listen address (default :8080)")
	v.BindPFlag(config.KeyHTTPAddr, cmd.Flags().Lookup("addr"))
	return cmd
}

func newQueryCommand(v *viper.Viper, flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <category>",
		Short: "List the records of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.Catalog.Query(cmd.Context(), args[0], flags.Filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handler.NewProductViews(records))
		},
	}
	cmd.Flags().StringVar(&flags.Filter, "filter", "", "only records whose description contains this text")
	return cmd
}

func newGetCommand(v *viper.Viper, flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <category> <productId>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Catalog.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handler.NewProductView(*rec))
		},
	}
}

func newCreateCommand(v *viper.Viper, flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or overwrite a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.CreateInput{
				Category:    flags.Category,
				ProductID:   flags.ProductID,
				Name:        flags.Name,
				Description: flags.Description,
			}
			if cmd.Flags().Changed("price") {
				price, err := parsePrice(flags.Price)
				if err != nil {
					return err
				}
				in.Price = &price
			}
			if cmd.Flags().Changed("in-stock") {
				in.InStock = &flags.InStock
			}

			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Catalog.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handler.NewProductView(*rec))
		},
	}
	cmd.Flags().StringVar(&flags.Category, "category", "", "category (partition key)")
	cmd.Flags().StringVar(&flags.ProductID, "product-id", "", "product id (sort key)")
	addFieldFlags(cmd, flags)
	return cmd
}

func newUpdateCommand(v *viper.Viper, flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <category> <productId>",
		Short: "Change some fields of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := domain.UpdateInput{Category: args[0], ProductID: args[1]}
			if cmd.Flags().Changed("name") {
				in.Name = &flags.Name
			}
			if cmd.Flags().Changed("description") {
				in.Description = &flags.Description
			}
			if cmd.Flags().Changed("price") {
				price, err := parsePrice(flags.Price)
				if err != nil {
					return err
				}
				in.Price = &price
			}
			if cmd.Flags().Changed("in-stock") {
				in.InStock = &flags.InStock
			}

			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Catalog.PartialUpdate(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), handler.NewProductView(*rec))
		},
	}
	addFieldFlags(cmd, flags)
	return cmd
}

func newTranslateCommand(v *viper.Viper, flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <category> <productId>",
		Short: "Translate a record's description, using the cached copy if present",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Translations.Translate(cmd.Context(), args[0], args[1], flags.Language)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&flags.Language, "language", "l", "", "target language code, e.g. es or pt-BR")
	cmd.MarkFlagRequired("language")
	return cmd
}

func addFieldFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.Name, "name", "", "display name")
	cmd.Flags().StringVar(&flags.Description, "description", "", "description text")
	cmd.Flags().StringVar(&flags.Price, "price", "", "price, e.g. 10.50")
	cmd.Flags().BoolVar(&flags.InStock, "in-stock", flags.InStock, "availability")
}

func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q is not a number", domain.ErrValidation, s)
	}
	return price, nil
}
