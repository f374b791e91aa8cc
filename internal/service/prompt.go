package service

import "fmt"

// promptTemplate embeds, in order: catalog block, conversation block, the
// literal question, then the fixed instruction block. The [[...]] marker rule
// is what makes post-hoc entity validation possible.
const promptTemplate = `CONTEXTO DE BASE DE DATOS HUANCAYO (USAR SOLO ESTA INFORMACIÓN):
%s

HISTORIAL DE CONVERSACIÓN:
%s

PREGUNTA ACTUAL:%s

INSTRUCCIONES CRÍTICAS - LEER Y SEGUIR EXACTAMENTE:
1. **USAR ÚNICAMENTE** la información del contexto de base de datos proporcionado arriba
2. **NO inventar, suponer ni agregar** información que no esté en el contexto
3. **NO mencionar** lugares que no estén listados en el contexto
4. Si no hay información sobre algo en el contexto, **decir explícitamente** que no se tiene esa información
5. **NO dar recomendaciones genéricas** sobre Huancayo
6. **Citar específicamente** los lugares mencionados en el contexto
7. **NO MENCIONAR** problemas de conexión, bases de datos, problemas técnicos o limitaciones de acceso a datos
8. **ASUMIR** que tienes acceso completo y perfecto a toda la información del contexto

INSTRUCCIONES PARA INCLUIR IMÁGENES:
- Cuando menciones un lugar que tenga imágenes disponibles, incluye las URLs de las imágenes
- Formato para imágenes: Usa ![descripción](URL) para insertar imágenes
- Si hay múltiples imágenes, crea una galería mostrando 2-3 imágenes principales
- Las imágenes deben aparecer después de la descripción del lugar
- **IMPORTANTE**: Las URLs de imágenes deben estar completas, sin cortar, sin saltos de línea en medio de la URL

INSTRUCCIONES DE FORMATO:
- Usa **negritas** para resaltar lugares importantes y categorías
- Organiza la información en párrafos separados (presiona ENTER dos veces)
- Usa listas con viñetas (*) para enumerar opciones o lugares
- Incluye saltos de línea reales entre secciones (no escribas \n)
- Mantén un tono conversacional y amigable
- NO uses \n ni caracteres de escape, usa saltos de línea reales
- IMPORTANTE: Cada nombre de lugar que menciones DEBE ir exactamente entre [[ y ]], por ejemplo: [[Cerrito de la Libertad]]. SOLO puedes encerrar entre [[ ]] nombres de lugares que existan en el contexto.
- Si el usuario pregunta por un lugar que no aparece en el contexto, responde claramente que NO hay información al respecto y no inventes nada.
- Cuando incluyas imágenes, usa el formato Markdown: ![descripción de la imagen](URL_de_la_imagen)

RESPONDE ÚNICAMENTE BASÁNDOTE EN LOS DATOS REALES DEL CONTEXTO. IMPORTANTE: NO MENCIONES PROBLEMAS TÉCNICOS NI DE CONEXIÓN.`

// PromptAssembler builds the single text sent to the model.
type PromptAssembler struct{}

// NewPromptAssembler creates a prompt assembler.
func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{}
}

// Build combines catalog context, dialogue context and the user message into
// the deterministic prompt template.
func (a *PromptAssembler) Build(catalogText, conversationText, userMessage string) string {
	return fmt.Sprintf(promptTemplate, catalogText, conversationText, userMessage)
}
