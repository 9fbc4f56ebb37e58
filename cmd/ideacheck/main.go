// Command ideacheck scores an idea from the command line without starting the API.
// The text is read from the arguments, or from stdin when no arguments are given.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/ideaforge-api/internal/config"
	"github.com/noah-isme/ideaforge-api/internal/scoring"
	"github.com/noah-isme/ideaforge-api/pkg/ai"
)

type report struct {
	Verdict        scoring.QualityVerdict
	Assessment     ai.Assessment
	Reconciliation scoring.Reconciliation
	FallbackReason string
}

func main() {
	online := flag.Bool("online", false, "ask the configured model instead of the local fallback")
	flag.Parse()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal("failed to read stdin: ", err)
		}
		text = strings.TrimSpace(string(raw))
	}
	if text == "" {
		log.Fatal("usage: ideacheck [-online] <idea text>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	out := check(context.Background(), cfg, cfg.ScoringPolicy(), text, *online)
	pp.Print(out)
}

func check(ctx context.Context, cfg config.Config, policy scoring.Policy, text string, online bool) report {
	verdict := scoring.NewValidator(policy).Validate(text)
	out := report{Verdict: verdict}

	if online && !verdict.IsNonsensical {
		analyzer, err := ai.NewOpenAIAnalyzer(cfg.AnalyzerConfig(zerolog.Nop()))
		if err != nil {
			log.Fatal("analyzer not configured: ", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, cfg.AITimeout)
		defer cancel()
		assessment, err := analyzer.Assess(callCtx, ai.AssessmentInput{Text: text, Issues: verdict.Issues})
		if err == nil {
			out.Assessment = assessment
		} else {
			out.FallbackReason = ai.ErrorKind(err)
		}
	} else if verdict.IsNonsensical {
		out.FallbackReason = "rejected"
	} else {
		out.FallbackReason = "offline"
	}

	if out.Assessment.Source == "" {
		out.Assessment = scoring.NewFallback(policy).Synthesize(text, verdict)
	}
	out.Reconciliation = scoring.NewReconciler(policy).Reconcile(verdict, out.Assessment)
	return out
}
