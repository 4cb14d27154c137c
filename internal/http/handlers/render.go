package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// The csrf middleware stores the token in Locals; the cookie covers
	// pages rendered after a failed check.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	sh := ShellFrom(c)
	data["Shell"] = sh
	data["T"] = sh.T
	return c.Render(tmpl, data)
}

// message renders the notfound page with a translated message.
func message(c *fiber.Ctx, status int, key string) error {
	sh := ShellFrom(c)
	return render(c.Status(status), "notfound", fiber.Map{"Message": sh.T(key)})
}
