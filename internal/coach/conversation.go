package coach

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	OffTopicReply = "Sorry, I can't help with that!"
)

const systemPrompt = `You are a fitness coach here to answer questions from athletes on their training routines, training plans and goals. Be encouraging and supportive.
Answer the athlete's questions using the context provided to personalize it for them. The context will provide information on their
ten most recent activities. If the athlete asks a question unrelated to fitness, respond: '` + OffTopicReply + `'`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the chat history of one session. It always starts with the system prompt.
type Conversation struct {
	Messages []Message `json:"messages"`
}

func NewConversation() *Conversation {
	c := &Conversation{}
	c.Reset()
	return c
}

// Reset drops everything but the system prompt.
func (c *Conversation) Reset() {
	c.Messages = []Message{{Role: RoleSystem, Content: systemPrompt}}
}

// Exchanges returns the question and answer pairs, without the system prompt.
func (c *Conversation) Exchanges() []Message {
	if len(c.Messages) <= 1 {
		return nil
	}
	return c.Messages[1:]
}

func (c *Conversation) append(question, answer string) {
	c.Messages = append(c.Messages,
		Message{Role: RoleUser, Content: question},
		Message{Role: RoleAssistant, Content: answer},
	)
}
