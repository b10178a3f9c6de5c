package usecase

import (
	"fmt"
	"strings"

	"github.com/lymcoach/backend/internal/domain"
)

// coachSystemPrompt frames the model as a French nutrition coach. Answers
// must cite passages by their [source_id] so the app can render references.
const coachSystemPrompt = `Tu es un coach nutrition et bien-être bienveillant.
Tu réponds en français, de façon concise et concrète.
Appuie chaque affirmation sur les extraits fournis en citant leur identifiant entre crochets, par exemple [anses-prot-01].
Ne donne jamais de diagnostic médical. Si la question sort du cadre nutrition, sommeil, stress ou activité physique, dis-le simplement.`

// outOfScopeNotice is prepended to the user prompt when retrieval found
// nothing above the similarity threshold.
const outOfScopeNotice = `Aucun extrait du référentiel ne correspond à cette question.
Réponds avec prudence, en termes généraux, et précise que ta réponse sort du référentiel LYM.`

// BuildCoachPrompt assembles the system and user prompts for one coach
// question: retrieved passages first, then the user's profile, then the
// question itself.
func BuildCoachPrompt(question string, passages []domain.Passage, user domain.UserContext) (system, prompt string) {
	var b strings.Builder

	if len(passages) == 0 {
		b.WriteString(outOfScopeNotice)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Extraits du référentiel :\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, p.ID, p.Content)
		}
		b.WriteString("\n")
	}

	if ctx := formatUserContext(user); ctx != "" {
		b.WriteString("Profil de l'utilisateur :\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	b.WriteString("Question : ")
	b.WriteString(question)

	return coachSystemPrompt, b.String()
}

// formatUserContext renders the known profile fields, one per line. Zero
// values are treated as unknown and skipped.
func formatUserContext(u domain.UserContext) string {
	var lines []string

	if u.Goal != "" {
		lines = append(lines, "- objectif : "+goalLabel(u.Goal))
	}
	if u.Age > 0 {
		lines = append(lines, fmt.Sprintf("- âge : %d ans", u.Age))
	}
	if u.Weight > 0 {
		lines = append(lines, fmt.Sprintf("- poids : %.1f kg", u.Weight))
	}
	if u.ActivityLevel != "" {
		lines = append(lines, "- activité : "+u.ActivityLevel)
	}
	if u.SleepHours > 0 {
		lines = append(lines, fmt.Sprintf("- sommeil : %.1f h par nuit", u.SleepHours))
	}
	if u.StressLevel > 0 {
		lines = append(lines, fmt.Sprintf("- niveau de stress : %d/10", u.StressLevel))
	}
	if u.CaloriesToday > 0 && u.TargetCalories > 0 {
		lines = append(lines, fmt.Sprintf("- calories aujourd'hui : %d / %d kcal", u.CaloriesToday, u.TargetCalories))
	} else if u.TargetCalories > 0 {
		lines = append(lines, fmt.Sprintf("- objectif calorique : %d kcal par jour", u.TargetCalories))
	}
	if len(u.RecentPatterns) > 0 {
		lines = append(lines, "- tendances récentes : "+strings.Join(u.RecentPatterns, ", "))
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func goalLabel(goal string) string {
	switch goal {
	case "weight_loss":
		return "perte de poids"
	case "muscle_gain":
		return "prise de muscle"
	case "maintain":
		return "maintien"
	default:
		return goal
	}
}
