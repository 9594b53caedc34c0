package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"caisse-system/internal/common/config"
	"caisse-system/internal/common/logger"
	"caisse-system/internal/domain"
	"caisse-system/internal/ledger"
	"caisse-system/internal/menu"
	"caisse-system/internal/orderbook"
	"caisse-system/internal/printing"
	"caisse-system/internal/receipt"
	"caisse-system/internal/ticket"
)

func main() {
	mode := flag.String("mode", "till", "till | summary | zreport | reset-tickets")
	menuPath := flag.String("menu", "config/menu_restaurant.json", "menu file")
	confirm := flag.Bool("confirm", false, "required for zreport and reset-tickets")
	flag.Parse()

	lg := logger.New("caisse")
	cfg := config.Load()

	lgr, err := ledger.New(cfg.Storage.DataDir, logger.New("ledger"))
	if err != nil {
		lg.Error("fatal", err, nil)
		os.Exit(1)
	}
	seq := ticket.NewSequencer(cfg.Storage.DataDir)

	switch *mode {
	case "till":
		f := receipt.New(cfg.Restaurant)
		disp := printing.NewDispatcher(cfg.Printers, f, logger.New("printing"))
		m := menu.Load(*menuPath, logger.New("menu"))
		runTill(cfg, lgr, seq, m, disp)
	case "summary":
		printSummary(lgr.CurrentDaySummary())
	case "zreport":
		if !*confirm {
			fmt.Fprintln(os.Stderr, "zreport resets the day's totals; re-run with -confirm")
			os.Exit(2)
		}
		report, err := lgr.GenerateZReport()
		if err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
		fmt.Printf("Rapport Z n°%04d (%s): %s€ TTC, %d transactions\n",
			report.Number, report.AccountingDate, report.TotalInclusive.StringFixed(2), report.TransactionCount)
	case "reset-tickets":
		if !*confirm {
			fmt.Fprintln(os.Stderr, "reset-tickets restarts ticket numbering at 1; re-run with -confirm")
			os.Exit(2)
		}
		if err := seq.Reset(); err != nil {
			lg.Error("fatal", err, nil)
			os.Exit(1)
		}
		fmt.Println("Compteur de tickets remis à zéro")
	default:
		fmt.Fprintln(os.Stderr, "-mode must be till | summary | zreport | reset-tickets")
		os.Exit(2)
	}
}

// runTill is the interactive presentation loop: thin glue over the order
// book, the ledger and the printers, no business logic of its own.
func runTill(cfg *config.Config, lgr *ledger.Ledger, seq *ticket.Sequencer, m *menu.Menu, disp *printing.Dispatcher) {
	book := orderbook.New(cfg.Tables[0])
	fmt.Printf("%s — caisse. \"help\" pour les commandes.\n", cfg.Restaurant.Name)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", book.CurrentTable())
		if !scanner.Scan() {
			return
		}
		cmd, arg := splitCommand(scanner.Text())
		switch cmd {
		case "":
		case "help":
			printHelp()
		case "menu":
			for _, s := range m.Sections {
				fmt.Println(s.Name)
				for _, it := range s.Items {
					fmt.Printf("  %-24s %7s€  (TVA %s%%)\n", it.Name, it.Price.StringFixed(2), it.VATRate)
				}
			}
		case "table":
			book.SwitchTable(arg)
		case "add":
			item, ok := m.Find(arg)
			if !ok {
				fmt.Printf("article inconnu: %q\n", arg)
				continue
			}
			line, err := item.Line()
			if err != nil {
				fmt.Println(err)
				continue
			}
			book.CurrentOrder().Add(line)
		case "+", "-":
			delta := 1
			if cmd == "-" {
				delta = -1
			}
			book.CurrentOrder().UpdateQuantity(arg, delta)
		case "rm":
			book.CurrentOrder().Remove(arg)
		case "show":
			showOrder(book.CurrentOrder())
		case "clear":
			book.ClearCurrentOrder()
		case "pay":
			if arg == "" {
				fmt.Println("usage: pay <moyen de paiement>")
				continue
			}
			order := book.CurrentOrder()
			if _, err := lgr.RecordSale(order, arg); err != nil {
				fmt.Println("paiement refusé:", err)
				continue
			}
			book.ClearCurrentOrder()
			fmt.Printf("Paiement %s accepté (%s€)\n", arg, order.Total().StringFixed(2))
		case "print":
			order := book.CurrentOrder()
			if order.IsEmpty() {
				fmt.Println("aucun article dans la commande")
				continue
			}
			number, err := seq.Next()
			if err != nil {
				fmt.Println("numérotation indisponible:", err)
				continue
			}
			if err := disp.PrintOrder(order, number, time.Now()); err != nil {
				fmt.Println("erreur d'impression:", err)
				continue
			}
			fmt.Printf("Ticket n°%06d imprimé\n", number)
		case "summary":
			printSummary(lgr.CurrentDaySummary())
		case "quit", "exit":
			return
		default:
			fmt.Printf("commande inconnue: %q (voir \"help\")\n", cmd)
		}
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(arg)
}

func printHelp() {
	fmt.Print(`commandes:
  menu                  afficher la carte
  table <nom>           changer de table
  add <article>         ajouter un article
  + <article>           augmenter la quantité
  - <article>           diminuer la quantité
  rm <article>          retirer la ligne
  show                  afficher la commande
  clear                 vider la commande
  pay <moyen>           encaisser la commande
  print                 imprimer le ticket
  summary               résumé du jour
  quit                  quitter
`)
}

func showOrder(o *domain.Order) {
	if o.IsEmpty() {
		fmt.Println("(commande vide)")
		return
	}
	for _, li := range o.Lines {
		fmt.Printf("  %-24s x%-3d %8s€\n", li.Name, li.Quantity, li.LineTotal().StringFixed(2))
	}
	fmt.Printf("  TOTAL %s€\n", o.Total().StringFixed(2))
}

func printSummary(day *domain.DailySales) {
	fmt.Printf("Ventes du %s\n", day.Date)
	fmt.Printf("  HT:  %10s€\n", day.TotalExclusive.StringFixed(2))
	fmt.Printf("  TVA: %10s€\n", day.TotalTax.StringFixed(2))
	fmt.Printf("  TTC: %10s€\n", day.TotalInclusive.StringFixed(2))
	fmt.Printf("  Transactions: %d\n", day.TransactionCount)
	for method, amount := range day.ByPaymentMethod {
		fmt.Printf("  %-15s %8s€\n", method, amount.StringFixed(2))
	}
}
