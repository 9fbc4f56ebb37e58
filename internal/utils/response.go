package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Meta    interface{} `json:"meta,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func respond(c *fiber.Ctx, status int, body APIResponse) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	if body.Message == "" {
		body.Message = "error"
		if body.Success {
			body.Message = "success"
		}
	}
	return c.Status(status).JSON(body)
}

// OK sends a 200 envelope with list metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	return respond(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message, Meta: meta})
}

// SendSuccess sends a 200 envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusOK, APIResponse{Success: true, Data: data, Message: message})
}

// SendSuccessWithStatus sends a success envelope with a caller chosen status, e.g. 201.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	return respond(c, status, APIResponse{Success: true, Data: data, Message: message})
}

// Fail sends an error envelope with optional details such as field errors.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	return respond(c, status, APIResponse{Message: message, Details: details})
}

// FailWithCode sends an error envelope carrying a machine-readable code.
func FailWithCode(c *fiber.Ctx, status int, code, message string) error {
	return respond(c, status, APIResponse{Message: message, Code: code})
}

// SendError sends a bare error envelope.
func SendError(c *fiber.Ctx, status int, message string) error {
	return respond(c, status, APIResponse{Message: message})
}
