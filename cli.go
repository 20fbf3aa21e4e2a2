package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tournevent/carrierkit/internal/config"
	"github.com/tournevent/carrierkit/internal/telemetry"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func runRates(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path, _ := cmd.Flags().GetString("shipment")
	selected, _ := cmd.Flags().GetStringSlice("carrier")
	withTimings, _ := cmd.Flags().GetBool("timings")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := telemetry.NewCLILogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shipment, err := readShipment(path)
	if err != nil {
		return err
	}

	registry := initShipperRegistry(cfg, logger, nil)
	if len(selected) == 0 {
		selected = registry.Names()
	}
	if len(selected) == 0 {
		return fmt.Errorf("no carriers enabled")
	}

	rates, errs := registry.FindRatesFromCarriers(ctx, shipment, selected)
	printRates(cmd.OutOrStdout(), rates)
	logErrors(logger, errs)

	if withTimings {
		timings, errs := registry.FindTimingsFromCarriers(ctx, shipment, selected)
		fmt.Fprintln(cmd.OutOrStdout())
		printTimings(cmd.OutOrStdout(), timings)
		logErrors(logger, errs)
	}

	if len(rates) == 0 && len(errs) > 0 {
		return fmt.Errorf("all %d carriers failed", len(errs))
	}
	return nil
}

func runMethods(cmd *cobra.Command, args []string) error {
	nop := otelzap.New(zap.NewNop())

	wanted := make(map[string]bool, len(args))
	for _, a := range args {
		wanted[strings.ToLower(a)] = true
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CARRIER\tCODE\tNAME\tDOMESTIC\tINTERNATIONAL\tORIGINS")
	for _, c := range carriers(&config.Config{}, nop, nil) {
		carrier := c.shipper.Carrier()
		if len(wanted) > 0 && !wanted[carrier.Code] {
			continue
		}
		for _, m := range carrier.ShippingMethods {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%s\n",
				carrier.Code, m.ServiceCode, m.Name, m.Domestic, m.International, strings.Join(m.OriginCountries, ","))
		}
	}
	return w.Flush()
}

// readShipment decodes a YAML shipment file. JSON files decode the same way.
func readShipment(path string) (*shipper.Shipment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shipment: %w", err)
	}
	defer f.Close()

	var shipment shipper.Shipment
	if err := yaml.NewDecoder(f).Decode(&shipment); err != nil {
		return nil, fmt.Errorf("decoding shipment %s: %w", path, err)
	}
	return &shipment, nil
}

func printRates(out io.Writer, results []shipper.CarrierRates) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CARRIER\tSERVICE\tTOTAL\tDELIVERY\tGUARANTEED")
	for _, cr := range results {
		for _, r := range cr.Rates {
			total := "-"
			if t, err := r.TotalAmount(); err == nil {
				total = t.String()
			}
			delivery := "-"
			if r.DeliveryDate != nil {
				delivery = r.DeliveryDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", cr.Carrier, r.ShippingMethod.Name, total, delivery, r.Guaranteed)
		}
	}
	w.Flush()
}

func printTimings(out io.Writer, results []shipper.CarrierTimings) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CARRIER\tSERVICE\tPICKUP\tDELIVERY\tHOURS")
	for _, ct := range results {
		for _, t := range ct.Timings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\n", ct.Carrier, t.ShippingMethod.Name,
				t.Pickup.Format("2006-01-02"), t.Delivery.Format("2006-01-02"), t.TimeInTransit().Hours())
		}
	}
	w.Flush()
}

func logErrors(logger *otelzap.Logger, errs []error) {
	for _, err := range errs {
		logger.Error("Carrier failed", zap.Error(err))
	}
}
