package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"chatform/config"
	"chatform/internal/catalog"
	"chatform/internal/engine"
	"chatform/internal/model"
	"chatform/internal/service"
	"chatform/internal/sink"
)

// Console runner: one questionnaire conversation on stdin/stdout, no
// server, no database. Finished questionnaires go straight to the
// Sheets sink when SHEET_ID is configured.
func main() {
	ctx := context.Background()
	cfg := config.Load()

	cat := catalog.Default()
	rules := engine.NewRuleEngine(engine.DefaultRules())

	var sinks []sink.Sink
	if cfg.SheetID != "" {
		sheetsSink, err := sink.NewSheetsSink(ctx, cfg.SheetCredentialsFile, cfg.SheetID, cfg.SheetName)
		if err != nil {
			log.Fatal("Failed to init Sheets sink:", err)
		}
		sinks = append(sinks, sheetsSink)
	}
	submissions := service.NewSubmissionService(cat, nil, sinks...)

	sess := &model.Session{
		ID:        uuid.New().String(),
		Status:    model.SessionActive,
		StartedAt: time.Now(),
	}
	orch := engine.NewOrchestrator(cat, rules, sess, service.NewExtractorService(), service.NewPrompterService())

	fmt.Println(orch.Greeting(ctx))

	scanner := bufio.NewScanner(os.Stdin)
	for sess.Status != model.SessionEnded {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		reply := orch.ProcessTurn(ctx, scanner.Text())
		for _, msg := range reply.Messages {
			fmt.Println(msg)
		}
		if reply.Kind != engine.ReplyEnded {
			fmt.Printf("目前進度：%d/%d 題已完成。\n", reply.Answered, reply.Total)
		}
	}

	if sess.Status == model.SessionEnded && !sess.Saved {
		if _, err := submissions.Save(ctx, sess); err != nil {
			log.Printf("saving submission: %v", err)
		} else {
			sess.Saved = true
		}
	}
}
