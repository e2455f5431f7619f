// internal/assistant/flow/add.go
package flow

import (
	"context"
	"fmt"
	"strings"

	"listing-assistant/internal/assistant/respond"
	"listing-assistant/internal/common/validation"
	"listing-assistant/internal/identity"
	"listing-assistant/internal/models"
)

const msgAddPrompt = `➕ Great! Let's add a new business.

I'll ask you a few questions to register your business. Let's start!

**What is the name of your business?**`

// websiteSkipWords treat the optional website step as intentionally blank.
var websiteSkipWords = map[string]bool{
	"skip": true, "none": true, "n/a": true, "-": true, "": true,
}

// citySkipWords covers the optional city and state steps.
var citySkipWords = map[string]bool{
	"skip": true, "none": true,
}

// addListingSchema is the final gate on the accumulated answers before the
// insert. Each step already validates its own input; this catches state
// corruption between steps.
var addListingSchema = validation.JSONSchema{
	Type:     "object",
	Required: []string{"name", "phone_number", "address", "category"},
	Properties: map[string]validation.Property{
		"name":         {Type: "string", MinLength: intPtr(2)},
		"phone_number": {Type: "string", MinLength: intPtr(6)},
		"address":      {Type: "string", MinLength: intPtr(5)},
		"category":     {Type: "string", MinLength: intPtr(2)},
	},
}

func intPtr(v int) *int { return &v }

// handleAddFlow collects the seven registration answers one step at a time
// and inserts the listing at the end.
func (e *Engine) handleAddFlow(ctx context.Context, sess *models.Session, input string) (string, error) {
	state := sess.State
	answer := strings.TrimSpace(input)

	switch state.Step {
	case 1:
		if len(answer) < 2 {
			return "⚠️ Please enter a valid business name (at least 2 characters):", nil
		}
		state.Data["name"] = answer
		state.Step = 2
		return fmt.Sprintf(`Great! Your business is: **%s**

📞 **What is your business phone number?**
_(Example: 9873312399 or 98733 12399)_`, answer), nil

	case 2:
		if !identity.IsPlausible(answer) {
			return `⚠️ Please enter a valid phone number (at least 6 digits):
_(Example: 9873312399 or 98733 12399)_`, nil
		}
		normalized := identity.Normalize(answer)
		state.Data["phone_number"] = normalized
		state.Step = 3
		return fmt.Sprintf(`📞 Phone: **%s**

📍 **What is your business address?**`, normalized), nil

	case 3:
		if len(answer) < 5 {
			return "⚠️ Please enter a valid address (at least 5 characters):", nil
		}
		state.Data["address"] = answer
		state.Step = 4
		return fmt.Sprintf(`📍 Address: **%s**

🌐 **What is your business website?** _(optional - type "skip" to skip)_`, answer), nil

	case 4:
		if websiteSkipWords[strings.ToLower(answer)] {
			state.Data["website"] = ""
		} else {
			state.Data["website"] = answer
		}
		state.Step = 5
		return `🏷️ **What category is your business?**
_(Example: Restaurant, Salon, Retail Store, Healthcare, etc.)_`, nil

	case 5:
		if len(answer) < 2 {
			return `⚠️ Please enter a business category:
_(Example: Restaurant, Salon, Retail Store, Healthcare, etc.)_`, nil
		}
		state.Data["category"] = answer
		state.Step = 6
		return fmt.Sprintf(`🏷️ Category: **%s**

📍 **What city is your business located in?**`, answer), nil

	case 6:
		if citySkipWords[strings.ToLower(answer)] {
			state.Data["city"] = ""
		} else {
			state.Data["city"] = answer
		}
		state.Step = 7
		return "📍 **What state is your business located in?**", nil

	case 7:
		if citySkipWords[strings.ToLower(answer)] {
			state.Data["state"] = ""
		} else {
			state.Data["state"] = answer
		}
		return e.finishAdd(ctx, sess)
	}

	state.Reset()
	return e.render(ctx, respond.TemplateGreeting, nil), nil
}

func (e *Engine) finishAdd(ctx context.Context, sess *models.Session) (string, error) {
	state := sess.State
	data := state.Data

	accumulated := make(map[string]interface{}, len(data))
	for k, v := range data {
		accumulated[k] = v
	}
	if result := validation.ValidateInput(accumulated, addListingSchema); !result.Valid {
		state.Reset()
		return fmt.Sprintf(`❌ An error occurred: %s

What would you like to do?
- ➕ Type "**add a new business**" to try again`, strings.Join(result.GetErrorMessages(), "; ")), nil
	}

	newID, err := e.store.Insert(ctx, &models.ListingInput{
		Name:        data["name"],
		Address:     data["address"],
		PhoneNumber: data["phone_number"],
		Website:     data["website"],
		Category:    data["category"],
		City:        data["city"],
		State:       data["state"],
	})
	if err != nil {
		flowErr := e.errors.HandleTurnError(sess.ID, ComponentName, err)
		state.Reset()
		return fmt.Sprintf(`❌ An error occurred: %s

What would you like to do?
- ➕ Type "**add a new business**" to try again`, flowErr.Message), nil
	}
	if newID == 0 {
		state.Reset()
		return `❌ Failed to add the business. Please try again.

What would you like to do?
- ➕ Type "**add a new business**" to try again`, nil
	}

	// Read back the stored row so follow-up dialogs anchor on it. When the
	// identity lookup comes up empty (the insert committed but the index
	// read raced or failed), the most recent row stands in.
	if listings, lookupErr := e.store.LookupByIdentity(ctx, data["phone_number"]); lookupErr == nil && len(listings) > 0 {
		state.CurrentBusiness = &listings[0]
	} else if latest, latestErr := e.store.Latest(ctx); latestErr == nil && latest != nil {
		state.CurrentBusiness = latest
	}

	response := fmt.Sprintf(`✅ **Business Added Successfully!**

Your business has been registered with ID: **%d**

**Summary:**
- 🏢 **Name:** %s
- 📞 **Phone:** %s
- 📍 **Address:** %s
- 🌐 **Website:** %s
- 🏷️ **Category:** %s
- 📍 **City:** %s
- 📍 **State:** %s
`, newID,
		data["name"],
		data["phone_number"],
		data["address"],
		orNotSet(data["website"]),
		data["category"],
		orNotSet(data["city"]),
		orNotSet(data["state"]))

	state.Reset()
	return response + e.render(ctx, respond.TemplateSuggestionsAfterAdd, nil), nil
}

func orNotSet(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not set"
	}
	return v
}
