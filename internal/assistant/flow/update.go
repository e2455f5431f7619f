// internal/assistant/flow/update.go
package flow

import (
	"context"
	"fmt"
	"strings"

	"listing-assistant/internal/assistant/respond"
	"listing-assistant/internal/identity"
	"listing-assistant/internal/models"
)

const msgUpdatePrompt = `✏️ Let's update your business details!

Please enter the **phone number** associated with your business:
_(Example: 9873312399 or 98733 12399)_`

// doneWords exits the field-selection loop.
var doneWords = map[string]bool{
	"done":   true,
	"finish": true,
	"exit":   true,
	"no":     true,
	"cancel": true,
}

// updateFieldMapping resolves menu input (number or name) to a column key.
var updateFieldMapping = map[string]string{
	"1": "name", "name": "name",
	"2": "address", "address": "address",
	"3": "phone_number", "phone": "phone_number", "phone number": "phone_number",
	"4": "website", "website": "website",
	"5": "category", "category": "category",
	"6": "city", "city": "city",
	"7": "state", "state": "state",
}

// handleUpdateFlow runs the three-step edit dialog: resolve by phone,
// pick a field, enter the new value. A successful write loops back to
// field selection so several fields can be edited in one sitting.
func (e *Engine) handleUpdateFlow(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State

	switch state.Step {
	case 1:
		return e.updateStepPhone(ctx, sess, input)
	case 2:
		return e.updateStepField(ctx, sess, input)
	case 3:
		return e.updateStepValue(ctx, sess, input)
	}

	state.Reset()
	return e.render(ctx, respond.TemplateGreeting, nil), nil
}

func (e *Engine) updateStepPhone(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State
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

**Would you like to register this business instead?**
- ➕ Type "**add a new business**" to register it
- 🔍 Type "**show my business**" to try another number`, phone), nil
	}

	biz := &listings[0]
	state.CurrentBusiness = biz
	state.Data["phone"] = phone
	state.Step = 2

	response := "✅ **Business Found!**\n" + e.businessDetails(ctx, biz) + `
**Which field would you like to update?**
` + fieldMenu(biz) + `

Just type the field name or number (e.g., "name" or "1"):`

	if strings.TrimSpace(biz.Website) == "" {
		response += `

💡 **Suggestion:** Adding a website can increase visibility and trust!`
	}
	return response, nil
}

func (e *Engine) updateStepField(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State
	fieldInput := strings.ToLower(strings.TrimSpace(input))

	if doneWords[fieldInput] {
		state.Reset()
		details := ""
		if state.CurrentBusiness != nil {
			details = e.businessDetails(ctx, state.CurrentBusiness)
		}
		return "✅ **Update complete!**\n" + details + "\n" +
			e.render(ctx, respond.TemplateSuggestionsAfterUpdate, nil), nil
	}

	fieldKey, ok := updateFieldMapping[fieldInput]
	if !ok {
		return `⚠️ I didn't understand that. Please choose from:
1️⃣ **Name**
2️⃣ **Address**
3️⃣ **Phone**
4️⃣ **Website**
5️⃣ **Category**
6️⃣ **City**
7️⃣ **State**

Type the number (1-7) or field name, or "**done**" to finish:`, nil
	}

	state.Data["update_field"] = fieldKey
	state.Step = 3

	current := "Not set"
	if v := fieldValue(state.CurrentBusiness, fieldKey); strings.TrimSpace(v) != "" {
		current = v
	}

	return fmt.Sprintf(`✏️ Updating **%s**

Current value: **%s**

Please enter the new value:`, fieldTitle(fieldKey), current), nil
}

func (e *Engine) updateStepValue(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State
	newValue := strings.TrimSpace(input)

	if newValue == "" {
		return "⚠️ Please enter a value. Type the new value for the field:", nil
	}

	fieldKey := state.Data["update_field"]
	if fieldKey == "" {
		state.Reset()
		return `⚠️ Something went wrong. Please start again.

Type "**update my business**" to try again.`, nil
	}

	var bizID int64
	if state.CurrentBusiness != nil {
		bizID = state.CurrentBusiness.ID
	}
	phoneForUpdate := state.Data["phone"]

	updated, err := e.store.Update(ctx, bizID, phoneForUpdate, map[string]string{fieldKey: newValue})
	if err != nil {
		// Storage exceptions end the flow; the write may or may not
		// have landed, so make that visible.
		flowErr := e.errors.HandleTurnError(sess.ID, ComponentName, err)
		state.Reset()
		return fmt.Sprintf(`❌ Error updating business: %s

What would you like to do?
- ✏️ Type "**update my business**" to try again
- 🔍 Type "**show my business**" to view details`, flowErr.Message), nil
	}

	if !updated {
		// Stay at step 3 so the caller can retry with a different value.
		return fmt.Sprintf(`⚠️ Could not update **%s**.

Please try entering a different value, or type "**done**" to exit:`, fieldTitle(fieldKey)), nil
	}

	biz := e.refreshCurrentBusiness(ctx, sess, bizID, phoneForUpdate)
	state.Step = 2

	return fmt.Sprintf(`✅ **Successfully Updated!**

**%s** has been updated to: **%s**
`, fieldTitle(fieldKey), newValue) + e.businessDetails(ctx, biz) + `
**Would you like to update another field?**
` + fieldMenu(biz) + `

Type a number (1-7) to update another field, or type "**done**" to finish.`, nil
}

// refreshCurrentBusiness re-reads the listing after a write so the menu
// shows stored values, not what we think we wrote. Falls back to the
// session's cached copy when the re-read fails.
func (e *Engine) refreshCurrentBusiness(ctx context.Context, sess *models.Session, bizID int64, phone string) *models.Listing {
	state := sess.State
	if phone == "" {
		return state.CurrentBusiness
	}

	listings, err := e.store.LookupByIdentity(ctx, phone)
	if err != nil {
		e.logger.Warn("Refresh after update failed", map[string]interface{}{
			"sessionId": sess.ID,
			"error":     err.Error(),
		})
		return state.CurrentBusiness
	}
	if len(listings) == 0 {
		return state.CurrentBusiness
	}

	biz := &listings[0]
	for i := range listings {
		if listings[i].ID == bizID {
			biz = &listings[i]
			break
		}
	}
	state.CurrentBusiness = biz
	return biz
}

func fieldMenu(biz *models.Listing) string {
	menu := []struct {
		emoji string
		title string
		key   string
	}{
		{"1️⃣", "Name", "name"},
		{"2️⃣", "Address", "address"},
		{"3️⃣", "Phone", "phone_number"},
		{"4️⃣", "Website", "website"},
		{"5️⃣", "Category", "category"},
		{"6️⃣", "City", "city"},
		{"7️⃣", "State", "state"},
	}

	lines := make([]string, len(menu))
	for i, m := range menu {
		current := "Not set"
		if v := fieldValue(biz, m.key); strings.TrimSpace(v) != "" {
			current = v
		}
		lines[i] = fmt.Sprintf("%s **%s** - Current: %s", m.emoji, m.title, current)
	}
	return strings.Join(lines, "\n")
}

func fieldValue(l *models.Listing, key string) string {
	if l == nil {
		return ""
	}
	switch key {
	case "name":
		return l.Name
	case "address":
		return l.Address
	case "phone_number":
		return l.PhoneNumber
	case "website":
		return l.Website
	case "category":
		return l.Category
	case "city":
		return l.City
	case "state":
		return l.State
	}
	return ""
}

// fieldTitle renders a column key as a display title, e.g.
// "phone_number" becomes "Phone Number".
func fieldTitle(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
