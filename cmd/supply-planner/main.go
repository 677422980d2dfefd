package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"ai-supply-planner/internal/app"
	"ai-supply-planner/internal/config"
	"ai-supply-planner/internal/export"
	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/planner"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "supply-planner",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      "console",
		Output:      os.Stderr,
	})

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize planner: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "plan":
		err = runPlan(ctx, application, os.Args[2:])
	case "shopping":
		err = runShopping(ctx, application, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", planner.UserMessage(err))
		logg.Error(ctx, "command failed", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: supply-planner <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan       Generate the annual inventory plan")
	fmt.Println("  shopping   Generate the annual plan, then a shopping plan with shop offers")
	fmt.Println("\nRun 'supply-planner <command> -h' for flags.")
}

func formFlags(fs *flag.FlagSet) *inventory.FormInput {
	in := inventory.DefaultFormInput()
	fs.IntVar(&in.SeasonLength, "season", in.SeasonLength, "average season length in days")
	fs.IntVar(&in.AvgNightsPerUnit, "nights-per-unit", in.AvgNightsPerUnit, "average booked nights per unit")
	fs.IntVar(&in.AvgNightsPerBooking, "nights-per-booking", in.AvgNightsPerBooking, "average nights per booking")
	fs.IntVar(&in.TotalArea, "area", in.TotalArea, "total property area in m²")
	fs.IntVar(&in.Units, "units", in.Units, "number of rental units")
	fs.IntVar(&in.AvgUnitArea, "unit-area", in.AvgUnitArea, "average unit area in m²")
	fs.IntVar(&in.Cleaners, "cleaners", in.Cleaners, "number of cleaners")
	return &in
}

func runPlan(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	input := formFlags(fs)
	format := fs.String("format", "text", "output format: text, tsv, html or json")
	pdfPath := fs.String("pdf", "", "also write the plan as PDF to this path")
	copyTSV := fs.Bool("copy", false, "copy the plan to the clipboard as TSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "🧮 Izrađujem godišnji plan nabave...")
	plan, err := a.NewSession().GenerateInventoryPlan(ctx, *input)
	if err != nil {
		return err
	}

	if err := printPlan(plan, *format); err != nil {
		return err
	}
	if *copyTSV {
		if err := clipboard.WriteAll(export.PlanTSV(plan)); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "✅ Kopirano!")
	}
	if *pdfPath != "" {
		return writePDF(*pdfPath, func(f *os.File) error { return export.PlanPDF(f, plan, a.PDFOptions()) })
	}
	return nil
}

func printPlan(plan []inventory.PlanItem, format string) error {
	switch format {
	case "text":
		return app.WritePlan(os.Stdout, plan)
	case "tsv":
		fmt.Println(export.PlanTSV(plan))
		return nil
	case "html":
		frag, err := export.RenderPlanFragment(plan)
		if err != nil {
			return err
		}
		page, err := export.PrintableHTML(string(frag))
		if err != nil {
			return err
		}
		fmt.Println(page)
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	return fmt.Errorf("unknown format %q", format)
}

func runShopping(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("shopping", flag.ExitOnError)
	input := formFlags(fs)
	refresh := fs.Bool("refresh", false, "refresh prices once more after the shopping plan is built")
	pdfPath := fs.String("pdf", "", "also write the shopping plan as PDF to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess := a.NewSession()
	fmt.Fprintln(os.Stderr, "🧮 Izrađujem godišnji plan nabave...")
	if _, err := sess.GenerateInventoryPlan(ctx, *input); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "🔎 Tražim najbolje ponude...")
	items, err := sess.GenerateShoppingPlan(ctx)
	if err != nil {
		return err
	}
	if *refresh {
		fmt.Fprintln(os.Stderr, "🔄 Osvježavam cijene...")
		if items, err = sess.RefreshShoppingPlanPrices(ctx); err != nil {
			return err
		}
	}

	if err := app.WriteShopping(os.Stdout, items); err != nil {
		return err
	}
	if *pdfPath != "" {
		return writePDF(*pdfPath, func(f *os.File) error { return export.ShoppingPlanPDF(f, items, a.PDFOptions()) })
	}
	return nil
}

func writePDF(path string, render func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "📄 PDF spremljen: %s\n", path)
	return nil
}
