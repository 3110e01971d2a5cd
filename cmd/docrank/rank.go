package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"docrank/internal/domain"
	"docrank/internal/report"
	"docrank/internal/scoring"
	"docrank/internal/service"
)

var rankCmd = &cobra.Command{
	Use:   "rank --persona ROLE --job TASK document...",
	Short: "Rank the sections of ad-hoc documents",
	Long:  "Ranks the sections of the given documents for a persona and job without a collection input file.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

var (
	rankPersona string
	rankJob     string
	rankOutput  string
	rankExplain bool
	rankTop     int
)

func init() {
	rankCmd.Flags().StringVarP(&rankPersona, "persona", "p", "", "Persona role (required)")
	rankCmd.Flags().StringVarP(&rankJob, "job", "j", "", "Job to be done (required)")
	rankCmd.Flags().StringVarP(&rankOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	rankCmd.Flags().BoolVar(&rankExplain, "explain", false, "Print the keyword score breakdown of the top sections")
	rankCmd.Flags().IntVar(&rankTop, "top", 5, "Number of sections to explain")

	if err := rankCmd.MarkFlagRequired("persona"); err != nil {
		panic(fmt.Sprintf("failed to mark persona flag as required: %v", err))
	}
	if err := rankCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sc := domain.ScoringContext{PersonaRole: rankPersona, JobTask: rankJob}
	out, res, err := a.svc.RankFiles(cmd.Context(), args, sc)
	if err != nil {
		return fmt.Errorf("failed to rank documents: %w", err)
	}

	if rankExplain {
		explain(cmd, a.svc, res, sc)
	}

	if rankOutput == "" {
		data, err := out.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := report.Write(rankOutput, out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", rankOutput)
	return nil
}

func explain(cmd *cobra.Command, svc *service.Service, res *service.Result, sc domain.ScoringContext) {
	writeExplain(cmd.ErrOrStderr(), svc.NewScorer(sc), res.Sections, rankTop)
}

func writeExplain(w io.Writer, scorer *scoring.Scorer, sections []domain.RankedSection, top int) {
	persona, job := scorer.PersonaKeywords(), scorer.JobKeywords()
	fmt.Fprintf(w, "persona keywords: high [%s] medium [%s] low [%s]\n",
		strings.Join(persona.High, " "), strings.Join(persona.Medium, " "), strings.Join(persona.Low, " "))
	fmt.Fprintf(w, "job keywords: high [%s] medium [%s]\n", strings.Join(job.High, " "), strings.Join(job.Medium, " "))

	for i, s := range sections {
		if i >= top {
			break
		}
		b := scorer.Explain(s.Text, s.DocumentID)
		fmt.Fprintf(w, "#%d %s (%s, page %d)\n", s.ImportanceRank, s.Title, s.DocumentID, s.PageNumber)
		fmt.Fprintf(w, "  relevance %.4f = vector %.4f, keyword %.4f\n", s.RelevanceScore, s.VectorScore, s.KeywordScore)
		fmt.Fprintf(w, "  persona %.2f  job %.2f  context %+.2f  penalty %.2f  length /%.2f\n",
			b.PersonaScore, b.JobScore, b.ContextBonus, b.Penalty, b.LengthDivisor)
		if len(b.FiredRules) > 0 {
			fmt.Fprintf(w, "  rules: %s\n", strings.Join(b.FiredRules, ", "))
		}
	}
}
