// Package canned implements an offline coach. It answers from a fixed set of
// replies and serves them over the same chat-completions event stream that
// the openai package consumes, so the whole pipeline runs without a network.
package canned

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// Greeting opens every new conversation.
const Greeting = "Hey there! 👋 I'm your AI fitness coach. I'm here to help you crush your fitness goals with personalized workout advice, form tips, and motivation. What can I help you with today?"

// QuickPrompts are the suggestions offered above the input line.
var QuickPrompts = []string{
	"Suggest a workout",
	"How to improve form?",
	"Nutrition tips",
	"Recovery advice",
}

// replies are checked in order; the first match wins.
var replies = []struct {
	key  string
	text string
}{
	{
		key:  "suggest a workout",
		text: "Based on your recent activity, I recommend a 25-minute HIIT session today! It'll help boost your metabolism and complement your strength training from yesterday. Want me to show you the exercises?",
	},
	{
		key:  "how to improve form",
		text: "Great question! Proper form is crucial for results and injury prevention. For squats, focus on: 1) Keep your chest up, 2) Push your knees out over your toes, 3) Go as deep as your mobility allows. Would you like tips for any specific exercise?",
	},
	{
		key:  "nutrition tips",
		text: "To maximize your workouts, focus on: 1) Eating protein within 30 mins post-workout (20-30g), 2) Staying hydrated (aim for 3L daily), 3) Complex carbs for energy. What's your current goal - muscle building or fat loss?",
	},
	{
		key:  "recovery advice",
		text: "Recovery is when the magic happens! Here's what I recommend: 1) Sleep 7-9 hours, 2) Light stretching or yoga on rest days, 3) Foam rolling for 10 mins, 4) Stay hydrated. How are you currently recovering between sessions?",
	},
}

var fallbacks = []string{
	"That's a great question! As your AI fitness coach, I'm here to help you reach your goals. Could you tell me more about what you're looking to achieve?",
	"I love your enthusiasm! 💪 Let me help you with that. What specific aspect of your fitness journey would you like to focus on?",
	"Awesome! I'm analyzing your progress and have some personalized suggestions. What would you like to work on - strength, endurance, or flexibility?",
}

// Fallbacks returns the replies used when no keyword matches.
func Fallbacks() []string {
	return slices.Clone(fallbacks)
}

// Reply picks the coach's answer to input. A keyword reply is chosen when the
// lowercased input contains the keyword or the keyword contains the input;
// otherwise one of [Fallbacks] is drawn from rnd (the global source if nil).
func Reply(input string, rnd *rand.Rand) string {
	if text, ok := match(input); ok {
		return text
	}
	if rnd == nil {
		return fallbacks[rand.IntN(len(fallbacks))]
	}
	return fallbacks[rnd.IntN(len(fallbacks))]
}

func match(input string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return "", false
	}
	for _, r := range replies {
		if strings.Contains(lower, r.key) || strings.Contains(r.key, lower) {
			return r.text, true
		}
	}
	return "", false
}
