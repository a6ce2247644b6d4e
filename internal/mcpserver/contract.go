package mcpserver

// RecipeFormatContract describes the recipe Markdown format that LLM
// consumers should follow when creating or updating recipes.
const RecipeFormatContract = `# Larder Recipe Format Contract

Every recipe stored in Larder MUST follow this structure.

## Structure

` + "```" + `markdown
# Recipe Title                      # REQUIRED – first line, level-one heading

Category: Bread                     # REQUIRED – front matter "Key: value" lines
Serves: 4                           # OPTIONAL – positive whole number
Makes: 2 loaves                     # OPTIONAL – positive quantity plus unit noun

A short description in plain prose.

## Step Name (optional aside)       # at least one step

- Ingredient, quantity: prep note
- @[Other Recipe], 1/2: prep note

Instructions in Markdown.

---

Footer notes, sources and credits.
` + "```" + `

## Rules

1. **The title comes first.** The document must open with ` + "`" + `# Title` + "`" + `. The
   file name and slug are derived from it (` + "`" + `Toasted Bread` + "`" + ` → ` + "`" + `toasted-bread.md` + "`" + `).
2. **Category is required.** Other front matter keys are kept but not interpreted.
3. **Every step** has a ` + "`" + `##` + "`" + ` heading and either ingredients or instructions.
4. **Ingredients** are bullets: ` + "`" + `- Name, quantity: prep note` + "`" + `. Quantity and prep
   note are optional. Quantities may use fractions (` + "`" + `1/2 cup` + "`" + `, ` + "`" + `1 1/2 tsp` + "`" + `),
   vulgar fractions (` + "`" + `½` + "`" + `) and ranges (` + "`" + `2-3` + "`" + `).
5. **Cross-references** pull in another recipe: ` + "`" + `- @[Recipe Title], 2` + "`" + ` or
   ` + "`" + `- @[Recipe Title] *1/2` + "`" + `. The multiplier defaults to 1. Write the quantity
   after the reference, never before it.
6. **The footer** starts at the first ` + "`" + `---` + "`" + ` line after the steps.
7. **Encoding** is UTF-8 with a trailing newline.

## Ingredient names

Use the names in the ingredient catalog (` + "`" + `list_catalog` + "`" + ` tool) so nutrition and
shopping-list aisles resolve. Unknown names are reported as missing nutrition.

## Example

` + "```" + `markdown
# Toasted Bread

Category: Breakfast
Serves: 2

Crunchy and warm.

## Toast (until golden)

- @[Sourdough], 1/4: Cut into slices.
- Butter, 1 tbsp

Toast the bread, then spread the butter.

---

Adapted from a family recipe.
` + "```" + `
`
