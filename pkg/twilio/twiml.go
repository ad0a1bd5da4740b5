// Package twilio renders TwiML and talks to the Twilio REST API.
package twilio

import (
	"encoding/xml"
	"strconv"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

	DefaultSayVoice  = "Polly.Amy-Neural"
	DefaultSayRate   = "105%"
	DefaultSayVolume = "medium"
)

// Response is the TwiML <Response> document. Verbs are rendered in order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// Prosody wraps spoken text in an SSML <prosody> element.
type Prosody struct {
	Rate   string `xml:"rate,attr,omitempty"`
	Volume string `xml:"volume,attr,omitempty"`
	Text   string `xml:",chardata"`
}

// Say TwiML Say verb
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Prosody  *Prosody `xml:"prosody,omitempty"`
	Text     string   `xml:",chardata"`
}

// Gather TwiML Gather verb
type Gather struct {
	XMLName         xml.Name `xml:"Gather"`
	Input           string   `xml:"input,attr,omitempty"`
	Action          string   `xml:"action,attr,omitempty"`
	Method          string   `xml:"method,attr,omitempty"`
	Language        string   `xml:"language,attr,omitempty"`
	SpeechTimeout   string   `xml:"speechTimeout,attr,omitempty"`
	SpeechModel     string   `xml:"speechModel,attr,omitempty"`
	Enhanced        string   `xml:"enhanced,attr,omitempty"`
	ProfanityFilter string   `xml:"profanityFilter,attr,omitempty"`
	Verbs           []any
}

// Pause TwiML Pause verb
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr,omitempty"`
}

// Play TwiML Play verb
type Play struct {
	XMLName xml.Name `xml:"Play"`
	Loop    string   `xml:"loop,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Hangup TwiML Hangup verb
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Connect TwiML Connect verb
type Connect struct {
	XMLName xml.Name `xml:"Connect"`
	Stream  *Stream  `xml:"Stream"`
}

// Stream opens a bidirectional Media Stream.
type Stream struct {
	XMLName    xml.Name    `xml:"Stream"`
	URL        string      `xml:"url,attr"`
	Track      string      `xml:"track,attr,omitempty"`
	Parameters []Parameter `xml:"Parameter"`
}

// Parameter is a custom value echoed back in the stream's start message.
type Parameter struct {
	XMLName xml.Name `xml:"Parameter"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:"value,attr"`
}

// SayOptions are the voice attributes of a Say verb. Empty fields take the
// receptionist's defaults.
type SayOptions struct {
	Voice    string
	Language string
	Rate     string
	Volume   string
}

func newSay(text string, opts SayOptions) *Say {
	if opts.Voice == "" {
		opts.Voice = DefaultSayVoice
	}
	if opts.Rate == "" {
		opts.Rate = DefaultSayRate
	}
	if opts.Volume == "" {
		opts.Volume = DefaultSayVolume
	}
	return &Say{
		Voice:    opts.Voice,
		Language: opts.Language,
		Prosody:  &Prosody{Rate: opts.Rate, Volume: opts.Volume, Text: text},
	}
}

func newPlay(url string, loop int) *Play {
	p := &Play{URL: url}
	if loop > 0 {
		p.Loop = strconv.Itoa(loop)
	}
	return p
}

// GatherOptions overrides the speech gather defaults.
type GatherOptions struct {
	Action   string
	Language string
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) Say(text string, opts SayOptions) *Response {
	r.Verbs = append(r.Verbs, newSay(text, opts))
	return r
}

func (r *Response) Pause(seconds int) *Response {
	r.Verbs = append(r.Verbs, &Pause{Length: seconds})
	return r
}

func (r *Response) Play(url string, loop int) *Response {
	r.Verbs = append(r.Verbs, newPlay(url, loop))
	return r
}

func (r *Response) Hangup() *Response {
	r.Verbs = append(r.Verbs, &Hangup{})
	return r
}

// ConnectStream hands the call audio to a Media Streams websocket.
func (r *Response) ConnectStream(url, track string, params ...Parameter) *Response {
	r.Verbs = append(r.Verbs, &Connect{Stream: &Stream{URL: url, Track: track, Parameters: params}})
	return r
}

// Gather appends a speech Gather and returns it so prompts can be nested.
func (r *Response) Gather(opts GatherOptions) *Gather {
	if opts.Action == "" {
		opts.Action = "/handle-speech"
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	g := &Gather{
		Input:           "speech",
		Action:          opts.Action,
		Method:          "POST",
		Language:        opts.Language,
		SpeechTimeout:   "auto",
		SpeechModel:     "phone_call",
		Enhanced:        "true",
		ProfanityFilter: "false",
	}
	r.Verbs = append(r.Verbs, g)
	return g
}

func (g *Gather) Say(text string, opts SayOptions) *Gather {
	g.Verbs = append(g.Verbs, newSay(text, opts))
	return g
}

func (g *Gather) Pause(seconds int) *Gather {
	g.Verbs = append(g.Verbs, &Pause{Length: seconds})
	return g
}

func (g *Gather) Play(url string, loop int) *Gather {
	g.Verbs = append(g.Verbs, newPlay(url, loop))
	return g
}

// Render marshals the document with the XML declaration.
func (r *Response) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), body...), nil
}

// String renders the document, returning an empty <Response/> on failure.
func (r *Response) String() string {
	body, err := r.Render()
	if err != nil {
		return xmlHeader + "<Response></Response>"
	}
	return string(body)
}
