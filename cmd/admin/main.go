package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"holdem-server/internal/config"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var command = flag.String("c", "rooms", "specifies the command (rooms, credit)")
var gameID = flag.Int64("game", 0, "the game id for credit")
var username = flag.String("user", "", "the username for credit")
var amount = flag.Int("amount", 0, "the amount to credit, negative to debit")
var yes = flag.Bool("y", false, "do not ask for confirmation")

func main() {
	flag.Parse()

	cfg := config.Instance()
	db, err := store.OpenPostgres(cfg.PGDSN)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	s := store.NewPostgresStore(db)
	ctx := context.Background()

	switch *command {
	case "rooms":
		if err := listRooms(ctx, s); err != nil {
			logrus.WithError(err).Fatal("could not list rooms")
		}

	case "credit":
		if *gameID == 0 || *username == "" || *amount == 0 {
			logrus.Fatal("credit requires -game, -user and -amount")
		}

		player, err := s.GetPlayer(ctx, *gameID, *username)
		if err != nil {
			logrus.WithError(err).Fatal("could not find player")
		}

		if !*yes {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				logrus.Fatal("refusing to credit without a terminal, pass -y")
			}

			question := fmt.Sprintf("Credit %s in game %d with %d (balance %d) (y/N)", player.Username, player.GameID, *amount, player.Money)
			answer, err := getInput(question)
			if err != nil {
				logrus.WithError(err).Fatal("could not get answer")
			}

			if answer == "" || strings.ToLower(answer)[0] != 'y' {
				os.Exit(1)
			}
		}

		if err := s.SetMoney(ctx, *gameID, player.Username, *amount, true); err != nil {
			logrus.WithError(err).Fatal("could not credit player")
		}

		fmt.Printf("Credited %s with %d\n", player.Username, *amount)

	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func listRooms(ctx context.Context, s store.Store) error {
	games, err := s.ListGames(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTARTED\tPOT\tPLAYERS")
	for _, g := range games {
		players, err := s.ListPlayers(ctx, g.ID, true)
		if err != nil {
			return err
		}

		names := make([]string, len(players))
		for i, p := range players {
			names[i] = fmt.Sprintf("%s(%d)", p.Username, p.Money)
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%t\t%d\t%s\n", g.ID, g.Name, g.Started, g.CurrentPot, strings.Join(names, " "))
	}

	return w.Flush()
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	reader := bufio.NewReader(os.Stdin)
	str, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	str = strings.TrimRight(str, "\r\n")

	return str, nil
}
