package core

import "sync"

// Response is a canned counterpart reply.
type Response struct {
	Text         string
	QuickReplies []string
	Suggestions  []string
}

// ResponseSource picks the counterpart reply to a user message.
type ResponseSource interface {
	Next(prompt string) Response
}

// RandomPool chooses uniformly among a fixed set of responses.
type RandomPool struct {
	rng       Rand
	responses []Response
}

// NewRandomPool builds a pool. An empty pool answers with empty responses.
func NewRandomPool(rng Rand, responses ...Response) *RandomPool {
	return &RandomPool{rng: rng, responses: responses}
}

// Next ignores the prompt and returns a random response.
func (p *RandomPool) Next(string) Response {
	if len(p.responses) == 0 {
		return Response{}
	}
	return p.responses[p.rng.IntN(len(p.responses))]
}

// Script replays responses in order and wraps around, for deterministic runs.
type Script struct {
	mu        sync.Mutex
	responses []Response
	pos       int
}

// NewScript builds a scripted source.
func NewScript(responses ...Response) *Script {
	return &Script{responses: responses}
}

// Next returns the next scripted response.
func (s *Script) Next(string) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.responses) == 0 {
		return Response{}
	}
	r := s.responses[s.pos%len(s.responses)]
	s.pos++
	return r
}

// ResponseFunc adapts a function to ResponseSource.
type ResponseFunc func(prompt string) Response

// Next calls f.
func (f ResponseFunc) Next(prompt string) Response {
	return f(prompt)
}
