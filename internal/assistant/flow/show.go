// internal/assistant/flow/show.go
package flow

import (
	"context"
	"fmt"
	"strings"

	"listing-assistant/internal/assistant/respond"
	"listing-assistant/internal/identity"
	"listing-assistant/internal/models"
)

const msgShowPrompt = `🔍 Let's find your business!

Please enter the **phone number** associated with your business:
_(Example: 9873312399 or 98733 12399)_`

const msgWebsiteTip = `
💡 **Tip:** Adding a website can increase visibility and trust!
`

// handleShowFlow resolves a phone number to the caller's listing and
// displays it. Single step; the flow resets on both hit and miss.
func (e *Engine) handleShowFlow(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State
	if state.Step != 1 {
		state.Reset()
		return e.render(ctx, respond.TemplateGreeting, nil), nil
	}

	phone := strings.TrimSpace(input)
	if !identity.IsPlausible(phone) {
		return msgInvalidPhone, nil
	}

	listings, err := e.store.LookupByIdentity(ctx, phone)
	if err != nil {
		return "", err
	}

	if len(listings) == 0 {
		state.Reset()
		return fmt.Sprintf(`❌ No business found with phone number **%s**

The number doesn't match any registered business in our database.

**Would you like to register this business?**
- ➕ Type "**add a new business**" to register it
- 🔍 Type "**show my business**" to try another number`, phone), nil
	}

	state.Reset()
	biz := &listings[0]
	state.CurrentBusiness = biz

	response := "✅ **Business Found!**\n" + e.businessDetails(ctx, biz)
	if strings.TrimSpace(biz.Website) == "" {
		response += msgWebsiteTip
	}
	response += e.render(ctx, respond.TemplateSuggestionsAfterShow, nil)
	return response, nil
}
