package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	questionbankservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/questionbank/application"
	rewardservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/reward/application"
	tournamentdomain "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/domain"
	tournamentservice "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application/parsers"
	"github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/application/schedule"
	tournamentdb "github.com/Black-And-White-Club/trivia-ledger/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/trivia-ledger/internal/archive"
	"github.com/gosimple/slug"
	"github.com/urfave/cli/v2"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "initialize the question bank, tournament manager and reward distributor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "treasury", Usage: "platform fee recipient (defaults to the signer)"},
		},
		Action: func(c *cli.Context) error {
			svc, err := openServices(c)
			if err != nil {
				return err
			}
			defer svc.Close()

			treasury := c.String("treasury")
			if treasury == "" {
				treasury = svc.signer
			}
			return initPrograms(c.Context, svc, treasury, c.App.Writer)
		},
	}
}

// initPrograms initializes each program with the signer as authority. Programs that are
// already initialized are reported and skipped.
func initPrograms(ctx context.Context, svc *services, treasury string, out io.Writer) error {
	steps := []struct {
		program string
		run     func() error
		already error
	}{
		{"questionbank", func() error {
			_, err := svc.questionBank.Initialize(ctx, svc.signer)
			return err
		}, questionbankservice.ErrAlreadyInitialized},
		{"tournament", func() error {
			_, err := svc.tournaments.Initialize(ctx, svc.signer)
			return err
		}, tournamentservice.ErrAlreadyInitialized},
		{"reward", func() error {
			_, err := svc.rewards.Initialize(ctx, svc.signer, treasury)
			return err
		}, rewardservice.ErrAlreadyInitialized},
	}

	for _, s := range steps {
		err := s.run()
		switch {
		case errors.Is(err, s.already):
			fmt.Fprintf(out, "%s: already initialized\n", s.program)
		case err != nil:
			return fmt.Errorf("initialize %s: %w", s.program, err)
		default:
			fmt.Fprintf(out, "%s: initialized with authority %s\n", s.program, svc.signer)
		}
	}
	return nil
}

func tournamentCommand() *cli.Command {
	return &cli.Command{
		Name:  "tournament",
		Usage: "manage tournaments",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a tournament",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.Uint64Flag{Name: "entry-fee"},
					&cli.UintFlag{Name: "max-participants", Value: 100},
					&cli.StringFlag{Name: "start", Required: true, Usage: `start time, e.g. "tomorrow at 7pm" or RFC 3339`},
					&cli.StringFlag{Name: "timezone", Usage: "zone abbreviation or IANA name, defaults to UTC"},
					&cli.DurationFlag{Name: "duration", Value: time.Hour},
					&cli.UintFlag{Name: "questions", Value: 10},
					&cli.StringFlag{Name: "category"},
					&cli.IntFlag{Name: "difficulty", Value: -1, Usage: "1 to 5, omitted for any"},
				},
				Action: createTournament,
			},
			{
				Name:      "import-scores",
				Usage:     "submit scores from a CSV or XLSX sheet",
				ArgsUsage: "<tournament id> <file>",
				Action:    importScoresAction,
			},
			{
				Name:      "chart",
				Usage:     "render the standings chart as PNG",
				ArgsUsage: "<tournament id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output file, defaults to <id>-<name>.png"},
					&cli.BoolFlag{Name: "upload", Usage: "upload the chart to the configured archive bucket"},
				},
				Action: chartAction,
			},
		},
	}
}

// buildCreateParams turns the create flags into tournament parameters, resolving the start
// time relative to now.
func buildCreateParams(c *cli.Context, now time.Time) (tournamentdomain.CreateParams, error) {
	start, err := schedule.NewParser().ParseStart(c.String("start"), c.String("timezone"), now)
	if err != nil {
		return tournamentdomain.CreateParams{}, err
	}
	if c.Uint("questions") > tournamentdomain.MaxQuestionCount {
		return tournamentdomain.CreateParams{}, tournamentdomain.ErrInvalidQuestionCount
	}
	params := tournamentdomain.CreateParams{
		Name:            c.String("name"),
		Description:     c.String("description"),
		EntryFee:        c.Uint64("entry-fee"),
		MaxParticipants: uint32(c.Uint("max-participants")),
		StartTime:       start,
		Duration:        c.Duration("duration"),
		QuestionCount:   uint8(c.Uint("questions")),
		Category:        c.String("category"),
	}
	if d := c.Int("difficulty"); d >= 0 {
		if d > 255 {
			return tournamentdomain.CreateParams{}, fmt.Errorf("difficulty out of range: %d", d)
		}
		difficulty := uint8(d)
		params.Difficulty = &difficulty
	}
	return params, nil
}

func createTournament(c *cli.Context) error {
	params, err := buildCreateParams(c, time.Now())
	if err != nil {
		return err
	}
	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	t, err := svc.tournaments.CreateTournament(c.Context, svc.signer, params)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, t)
}

func tournamentID(c *cli.Context) (uint64, error) {
	var id uint64
	if _, err := fmt.Sscan(c.Args().First(), &id); err != nil {
		return 0, fmt.Errorf("invalid tournament id %q", c.Args().First())
	}
	return id, nil
}

// ScoreSubmitter is the part of the tournament service the importer needs.
type ScoreSubmitter interface {
	SubmitScore(ctx context.Context, signer string, id uint64, participant string, score uint32) (*tournamentdb.Registration, error)
}

// importScores submits every row of sheet. A rejected row does not stop the import; the
// failures are joined into the returned error.
func importScores(ctx context.Context, scorer ScoreSubmitter, signer string, id uint64, sheet *parsers.ScoreSheet, out io.Writer) (int, error) {
	var (
		submitted int
		errs      []error
	)
	for _, row := range sheet.Rows {
		if _, err := scorer.SubmitScore(ctx, signer, id, row.Participant, row.Score); err != nil {
			errs = append(errs, fmt.Errorf("line %d (%s): %w", row.Line, row.Participant, err))
			continue
		}
		submitted++
		fmt.Fprintf(out, "line %d: %s scored %d\n", row.Line, row.Participant, row.Score)
	}
	return submitted, errors.Join(errs...)
}

func importScoresAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: admin tournament import-scores <tournament id> <file>")
	}
	id, err := tournamentID(c)
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	parser, err := parsers.NewFactory().GetParser(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sheet, err := parser.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := importScores(c.Context, svc.tournaments, svc.signer, id, sheet, c.App.Writer)
	fmt.Fprintf(c.App.Writer, "submitted %d of %d scores\n", n, len(sheet.Rows))
	return err
}

// chartKey names a tournament's chart, e.g. "12-spring-finals.png".
func chartKey(t *tournamentdb.Tournament) string {
	name := slug.Make(t.Name)
	if name == "" {
		return fmt.Sprintf("%d.png", t.ID)
	}
	return fmt.Sprintf("%d-%s.png", t.ID, name)
}

func chartAction(c *cli.Context) error {
	id, err := tournamentID(c)
	if err != nil {
		return err
	}
	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	t, err := svc.tournaments.GetTournament(c.Context, id)
	if err != nil {
		return err
	}
	standings, err := svc.tournaments.GetStandings(c.Context, id)
	if err != nil {
		return err
	}
	png, err := tournamentservice.RenderStandingsChart(standings, tournamentdomain.MaxScore(t.QuestionCount), tournamentservice.DefaultPalette)
	if err != nil {
		return err
	}

	key := chartKey(t)
	if c.Bool("upload") {
		uploader, err := archive.New(c.Context, archive.Config(svc.cfg.Archive))
		if err != nil {
			return err
		}
		url, err := uploader.Put(c.Context, "standings/"+key, "image/png", png)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, url)
		return nil
	}

	out := c.String("out")
	if out == "" {
		out = key
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
	return nil
}

func mintCommand() *cli.Command {
	return &cli.Command{
		Name:      "mint",
		Usage:     "credit a holder from the mint authority",
		ArgsUsage: "<holder> <amount>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "asset", Usage: "asset to mint, defaults to the native asset"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: admin mint <holder> <amount>")
			}
			var amount uint64
			if _, err := fmt.Sscan(c.Args().Get(1), &amount); err != nil {
				return fmt.Errorf("invalid amount %q", c.Args().Get(1))
			}
			svc, err := openServices(c)
			if err != nil {
				return err
			}
			defer svc.Close()

			asset := c.String("asset")
			if asset == "" {
				asset = svc.cfg.Ledger.NativeAsset
			}
			balance, err := svc.ledger.Mint(c.Context, svc.signer, c.Args().First(), asset, amount)
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, balance)
		},
	}
}
