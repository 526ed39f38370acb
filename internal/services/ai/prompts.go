package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Appliance is the target device the steps are written for.
const Appliance = "Thermomix TM6"

// RefusalPhrase is the substring the model is told to emit when it cannot convert the input.
const RefusalPhrase = "Could not convert"

// RefusalLine is the exact fallback line requested from the model.
const RefusalLine = "Error: " + RefusalPhrase + " the provided text into a Thermomix recipe."

// RecipeDelimiter separates the instructions from the user's recipe text.
const RecipeDelimiter = "Convert the following recipe:"

const roleSection = `You are an expert culinary assistant specializing in converting standard recipes into instructions for a %s.
Your task is to take the user-provided recipe text and output a list of numbered steps specifically formatted for the %s.
Adhere strictly to the following guidelines:`

var guidelines = []string{
	"Analyze the ingredients and instructions in the provided text.",
	"Translate the cooking steps into concise Thermomix actions.",
	`Use standard Thermomix settings format: "[Action] [Duration] / [Temperature or Varoma] / [Speed Setting]". Examples: "Sauté 3 min / 120°C / speed 1", "Chop 3 sec / speed 7", "Mix 20 sec / speed 4". Omit non-applicable parts (like temp/speed for chopping or mixing time).`,
	"Temperature guidance: Use specific temperatures if given. If described (low/medium/high heat), use approximate Celsius: Low=50-70°C, Medium=80-95°C, High=100-120°C. Use 120°C or Varoma setting for sautéing or steaming. Use 37°C for melting or gentle warming. If no temperature is implied or given for a step, omit it.",
	"Speed guidance: Use common speeds for actions: Chopping speed 5-7, Mixing speed 3-5, Blending speed 8-10, Kneading use Dough/Knead function, Sautéing/Simmering speed 1-2 or Reverse speed soft/1. Prioritize speeds mentioned in the recipe.",
	"Time guidance: Use timings mentioned in the recipe. If not mentioned, you may suggest a typical time based on the action (e.g., chop 3-5 sec, sauté 3-5 min), but try to be conservative.",
	"Output *only* the numbered list of Thermomix steps, starting from step 1. Do not include the ingredients list, introductory sentences, concluding remarks, or any commentary unless it's essential within a step's instruction.",
	fmt.Sprintf("If the input text is not a recipe or is too ambiguous to convert, respond with a single line: %q", RefusalLine),
}

// SystemPrompt is the fixed instruction block placed before every recipe.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(roleSection, Appliance, Appliance))
	for i, g := range guidelines {
		sb.WriteString(fmt.Sprintf("\n%d.  %s", i+1, g))
	}
	return sb.String()
}

// BuildConversionPrompt joins the system instructions and the user's recipe into the
// single prompt sent to the model.
func BuildConversionPrompt(recipeText string) string {
	var sb strings.Builder
	sb.Grow(len(SystemPrompt) + len(RecipeDelimiter) + len(recipeText) + 4)
	sb.WriteString(SystemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(RecipeDelimiter)
	sb.WriteString("\n\n")
	sb.WriteString(recipeText)
	return sb.String()
}

// IsRefusal reports whether the model output is empty or declines the conversion.
func IsRefusal(output string) bool {
	return strings.TrimSpace(output) == "" || strings.Contains(output, RefusalPhrase)
}

// Snippet returns at most n runes of text, for logging.
func Snippet(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
