package game

import (
	"fmt"
	"math/rand"
	"strings"

	"chatquiz-service/internal/domain"
)

const (
	msgTypePlay         = "Type **play** to start the game!"
	msgAlreadyCompleted = "You have already completed the game!\nCome to the lab to see if you are the quiz champion!\nBest of luck!"
	msgAlreadyStarted   = "The game has already started! The question is:\n"
	msgHurry            = "\nHurry!"
	msgNextHint         = "\nType **next** to continue."
	msgCompleted        = "\n\nYou have completed the game!"
	msgReportComing     = "\n\nGive me some seconds to produce your report..."
	msgTimeout          = "Time out! You didn't answer on time!"
	msgReportHeader     = "Here are your results:\n\n"
)

var correctMsgs = []string{
	"Correct!",
	"Well done!",
	"Nice one!",
	"You got it!",
}

var wrongMsgs = []string{
	"Wrong!",
	"Not this time!",
	"Ouch, that's not it!",
}

func pickCorrectMsg() string {
	return correctMsgs[rand.Intn(len(correctMsgs))]
}

func pickWrongMsg() string {
	return wrongMsgs[rand.Intn(len(wrongMsgs))]
}

var optionLabels = [4]string{"A", "B", "C", "D"}

// ResolveOption maps free text to an option index 1-4. Anything that is not
// a single letter a-d (case-insensitive) resolves to 0, "no valid option".
func ResolveOption(text string) int {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "a":
		return 1
	case "b":
		return 2
	case "c":
		return 3
	case "d":
		return 4
	}
	return 0
}

// OptionLabel is the display name of an option index ("A".."D").
func OptionLabel(idx int) string {
	if idx < 1 || idx > 4 {
		return ""
	}
	return optionLabels[idx-1]
}

func questionPrompt(q domain.Question) string {
	var b strings.Builder
	b.WriteString(q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "\n**%s)** %s", strings.ToLower(optionLabels[i]), opt)
	}
	return b.String()
}

func reportEntry(q domain.Question, rec domain.AnswerRecord) string {
	var b strings.Builder
	b.WriteString(q.Text)
	b.WriteByte('\n')
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%s) %s", strings.ToLower(optionLabels[i]), opt)
		if i+1 == q.CorrectIndex {
			b.WriteString(" (correct)")
		}
		b.WriteByte('\n')
	}
	chosen := "none - you ran out of time"
	switch {
	case rec.Chosen != nil:
		chosen = strings.ToLower(OptionLabel(*rec.Chosen))
	case rec.Answered:
		chosen = "none - not a valid option"
	}
	fmt.Fprintf(&b, "Your answer: %s\n", chosen)
	fmt.Fprintf(&b, "Score: **%d** points\n\n", rec.Score)
	return b.String()
}

func helpText(timeoutSeconds int) string {
	return "Here are the things you can ask me:\n" +
		"- **play**: start the game!\n" +
		"- **a**, **b**, **c** or **d**: answer - please don't write the full text of the answer or I will get confused!\n" +
		"- **next**: go to the next question\n" +
		"- **score**: view your current score\n" +
		"- **report**: view your final report\n" +
		"- **help**: view this help again!\n" +
		fmt.Sprintf("Beware: you have just %d seconds to answer! The faster you are the more points you obtain!", timeoutSeconds)
}
