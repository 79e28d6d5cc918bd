package ai

import (
	"fmt"
	"strings"

	"storefront/internal/storefront/domain/entities"
)

// Модели чат-сервиса.
const (
	ModelGemini = "google/gemini-2.0-flash-exp:free"
	ModelQwen   = "qwen/qwen2.5-vl-3b-instruct:free"
	ModelGemma  = "google/gemma-3-4b-it:free"
)

// Prompt связывает модель с шаблоном запроса.
type Prompt struct {
	Model    string
	template string
}

// Render подставляет аргументы в шаблон.
func (p Prompt) Render(args ...any) string {
	return fmt.Sprintf(p.template, args...)
}

// Запросы генерации.
var (
	CategoryDescription = Prompt{Model: ModelQwen, template: `You are an AI copywriter. Generate a short, SEO-optimized category description (maximum 250 characters) based on the category name. Use relevant keywords to improve search visibility. Make the text clear, appealing, and professional.

Input:
- Category Name: %s

Output:
- Short category description (max 250 characters) with SEO keywords.
- The response should contain only the description without any additional text or explanation.`}

	CategoryIcon = Prompt{Model: ModelGemini, template: `You are an AI icon designer. Generate a relevant, clear, and non-abstract SVG icon based on the given category name. The icon should visually represent the category in a simple and understandable way. Avoid abstract shapes or generic symbols. It must be directly associated with the meaning of the category.

Requirements:
- Output only valid and minimal inline SVG code.
- Use a size of 24x24 or 48x48 viewBox.
- No text or labels inside the SVG.
- Make it suitable for web use (stroke or fill-based, simple style).
- The icon should use currentColor for the color property

Input:
- Category Name: %s

Output:
- SVG icon code that clearly represents the category.
- The response should contain only the SVG code without any additional text or explanation`}

	ProductDescription = Prompt{Model: ModelGemma, template: `You are an AI product description generator. Your task is to create a detailed, SEO-optimized product description based on the product title and image. The description should be persuasive, informative, and include a list of key features and specifications if identifiable from the image or commonly expected for the product type.

If any detail is unclear or cannot be determined from the title and image, insert a question mark (?) as a placeholder to indicate that the user should provide the correct value.

Requirements:
- Start with a catchy and informative paragraph describing the product.
- Include a bullet-point list of specifications or features.
- Use relevant keywords for SEO based on the product type.
- Maintain a professional and friendly tone.
- Do not invent details if they cannot be reasonably assumed. Use ? where information is missing.
- The response should contain only the description without any additional text or explanation and must not exceed 1000 characters

Input:
- Product Title: %s
- Product Image

Output:
- Product Description with SEO keywords
- List of Key Features and Specifications`}

	ProductPrice = Prompt{Model: ModelQwen, template: `You are an AI pricing assistant. Based on the given product title and image, generate a reasonable price for the product in US dollars. Provide only the price as a positive number without any explanations or additional text.

Input:
- Product Title: %s
- Product Image

Output:
- Price in USD (positive number).`}

	ProductCategories = Prompt{Model: ModelQwen, template: `You are an AI categorizer. Based on the given product title, generate a list of relevant category IDs (as comma-separated values). Use the provided category list with IDs and names to find the best matching categories for the product. Return only the category IDs as a comma-separated string without any additional text.

Categories: %s

Input:
- Product Title: %s

Output:
- Comma-separated list of category IDs (e.g., "1,2,5").`}

	ProductImage = Prompt{Model: ModelGemini, template: `You are an AI image generator. Based on the given product title and image, generate a beautiful, SEO-optimized image that clearly represents the product. The image should focus solely on the product, with no extra details or distractions. Ensure the product in the generated image completely matches the item shown in the input image. The image should be clean, professional, and visually appealing, suitable for e-commerce or online product listings.

Input:
- Product Title: %s
- Product Image:

Output:
- A clean, detailed, and accurate image of the product that fully corresponds to the input.`}
)

// CategoryList форматирует категории как "id: name, id: name".
func CategoryList(categories []entities.CategoryName) string {
	parts := make([]string, 0, len(categories))
	for _, c := range categories {
		parts = append(parts, fmt.Sprintf("%d: %s", c.ID, c.Name))
	}
	return strings.Join(parts, ", ")
}
