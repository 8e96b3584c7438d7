package services

import (
	"fmt"
	"math/rand/v2"
)

// Prompt keys. The catalog maps each key to one or more phrasings; locale
// catalogs are supplied by the host integration, DefaultPrompts is the
// built-in English set.
const (
	promptGreeting        = "new_user_greeting"
	promptResume          = "resume_playback"
	promptResumeReprompt  = "resume_playback_reprompt"
	promptPlayNewest      = "play_latest_episode"
	promptPlayOldest      = "play_oldest_episode"
	promptPlayingChosen   = "playing_chosen_episode"
	promptChoose          = "choose_episode"
	promptChooseReprompt  = "choose_episode_reprompt"
	promptEndOfPlaylist   = "end_of_playlist"
	promptStartOfPlaylist = "start_of_playlist"
	promptShuffleOn       = "shuffle_on"
	promptShuffleOff      = "shuffle_off"
	promptLoopOn          = "loop_on"
	promptLoopOff         = "loop_off"
	promptHelp            = "help"
	promptHelpReprompt    = "help_reprompt"
	promptGoodbye         = "cancel_stop_response"
	promptError           = "error"
	promptErrorReprompt   = "error_reprompt"
)

// Prompts holds the spoken strings for one locale. Pick chooses a phrasing at
// random so repeated interactions do not sound canned.
type Prompts map[string][]string

func (p Prompts) Pick(key string) string {
	variants := p[key]
	if len(variants) == 0 {
		return ""
	}
	return variants[rand.IntN(len(variants))]
}

func (p Prompts) Pickf(key string, args ...any) string {
	return fmt.Sprintf(p.Pick(key), args...)
}

// DefaultPrompts returns the built-in English catalog. %s placeholders are
// filled with the skill name or an episode number.
func DefaultPrompts() Prompts {
	return Prompts{
		promptGreeting: {
			"Welcome to %s. Starting with the latest episode.",
			"Hi, this is %s. Here is the newest episode.",
		},
		promptResume: {
			"Welcome back. You were on episode %s. Say resume to keep listening.",
			"Good to have you back. Episode %s is where you left off. Say resume to continue.",
		},
		promptResumeReprompt: {
			"Say resume to continue episode %s, or ask for another episode.",
		},
		promptPlayNewest: {
			"Playing the latest episode.",
			"Here is the newest episode.",
		},
		promptPlayOldest: {
			"Playing the first episode.",
			"Starting from the very beginning.",
		},
		promptPlayingChosen: {
			"Playing episode %s.",
			"Here is episode %s.",
		},
		promptChoose: {
			"Which episode would you like to hear?",
		},
		promptChooseReprompt: {
			"Tell me an episode number, for example play episode three.",
		},
		promptEndOfPlaylist: {
			"You have reached the end of the playlist.",
			"That was the last episode.",
		},
		promptStartOfPlaylist: {
			"You are at the start of the playlist.",
			"This is already the first episode.",
		},
		promptShuffleOn: {
			"Shuffle is on.",
		},
		promptShuffleOff: {
			"Shuffle is off. Back to the usual order.",
		},
		promptLoopOn: {
			"Loop is on.",
		},
		promptLoopOff: {
			"Loop is off.",
		},
		promptHelp: {
			"You can say play the latest episode, play episode five, next, previous, shuffle, or loop. What would you like?",
		},
		promptHelpReprompt: {
			"What would you like to hear?",
		},
		promptGoodbye: {
			"Goodbye.",
			"See you next time.",
		},
		promptError: {
			"Sorry, something went wrong. Please try again.",
		},
		promptErrorReprompt: {
			"Could you say that again?",
		},
	}
}
