package ollama

// captionPrompt is the fixed prompt sent with every captioning request.
// Keeping it constant makes captions comparable across the archive.
const captionPrompt = `Please describe this image in detail. Include information about objects, people, activities, setting, colors and any notable elements.`
