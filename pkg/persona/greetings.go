package persona

import "fmt"

const (
	TechnicalDifficulties = "Technical difficulties. Apparently even the phone system finds me exhausting. Call back later... or don't."
	TestLine              = "... Oh wonderful ... another test call ... This is exactly what I needed today."
	HoldAnnouncement      = "... You know what? I need to put you on hold. This conversation is exhausting me."
	HoldReturn            = "... ... ... I'm back. That was the best 30 seconds of my day. Now, where were we?"
	FollowUp              = "... Anything else I can pretend to help you with?"
	AIApology             = "*DEEP SIGH* The AI is having a moment. Just like me on Mondays. Can you try again? Or better yet, don't."
	NewCallMarker         = "[New Call]"
)

// Interruptions are prefixed to a reply mid-conversation.
var Interruptions = []string{
	"... Actually, hold that thought. My assistant just brought me my hourly kombucha.",
	"... Oh wait, I just remembered I have a very important... thing. But continue.",
	"Sorry, I was just checking my stock portfolio. What were you saying?",
	"One second, I need to update my Instagram story about how hard I'm working...",
}

// HoldMusic are the tracks played during a fake hold.
var HoldMusic = []string{
	"https://example.com/hold-music-1.mp3",
	"https://example.com/hold-music-2.mp3",
	"https://example.com/hold-music-3.mp3",
}

// GreetingLines returns the opening lines for a call, some of which start with
// the time-of-day greeting.
func GreetingLines(timeGreeting string) []string {
	return []string{
		fmt.Sprintf("%s, thank you for calling... uh... this place. I'm your exceptionally motivated receptionist. How may I direct your call into the void?", timeGreeting),
		"Hello, you've reached the front desk of... somewhere important, I'm sure. This is your dedicated receptionist speaking. What crisis can I help you with today?",
		fmt.Sprintf("%s, thank you for calling. I'm your receptionist, currently questioning all my life choices. How may I assist you?", timeGreeting),
		"Welcome to our establishment. I'm the receptionist, and yes, I'm a real person, unfortunately. How can I help you today?",
		"Hello, you've reached the reception desk. I'm here, against my better judgment. What do you need?",
		"Thank you for calling. This is reception, where enthusiasm comes to die. How may I direct your call?",
		fmt.Sprintf("%s, you've reached... whatever this company is called. I'm your receptionist, tragically. How can I pretend to help you?", timeGreeting),
		"Hello, front desk speaking. I'm your Yale-educated receptionist, making excellent use of my degree. What can I do for you?",
		"Thank you for calling our prestigious establishment. I'm the receptionist, living the dream... the nightmare, actually. How may I assist?",
		"Reception desk, this is your overqualified assistant speaking. I was just updating my resume, but I suppose I can help. What do you need?",
	}
}

// RandomGreeting picks an opening line for the current time of day.
func (p *Persona) RandomGreeting() string {
	return p.Pick(GreetingLines(TimeGreeting(p.now())))
}

// RandomInterruption picks an interruption phrase.
func (p *Persona) RandomInterruption() string {
	return p.Pick(Interruptions)
}

// ShouldInterrupt fires with the given probability once the caller is past
// their second turn.
func (p *Persona) ShouldInterrupt(turns int, probability float64) bool {
	return p.Chance(probability) && turns > 2
}

// RandomHoldMusic picks a hold track.
func (p *Persona) RandomHoldMusic() string {
	return p.Pick(HoldMusic)
}
