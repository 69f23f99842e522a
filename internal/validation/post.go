package validation

import (
	"fmt"
	"strings"
)

// ValidatePostTitle checks post title bounds.
func ValidatePostTitle(title string) error {
	title = strings.TrimSpace(title)

	if len(title) < 6 {
		return fmt.Errorf("title must be at least 6 characters long")
	}

	if len(title) > 255 {
		return fmt.Errorf("title must not exceed 255 characters")
	}

	return nil
}

// ValidatePostDescription checks post body bounds.
func ValidatePostDescription(description string) error {
	if len(strings.TrimSpace(description)) < 10 {
		return fmt.Errorf("description must be at least 10 characters long")
	}

	return nil
}

// ValidatePostCategory ensures the category label is present.
func ValidatePostCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category is required")
	}

	return nil
}

// ValidateCommentText ensures the comment body is present and bounded.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}

	if len(text) > 2000 {
		return fmt.Errorf("text must not exceed 2000 characters")
	}

	return nil
}

// ValidateCategoryTitle ensures the category title is present.
func ValidateCategoryTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}

	if len(title) > 100 {
		return fmt.Errorf("title must not exceed 100 characters")
	}

	return nil
}
