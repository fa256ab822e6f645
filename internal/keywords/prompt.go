package keywords

const extractionPrompt = `You extract keywords from one sentence of a narrated tech video so each can be illustrated on screen.

Rules:
1. Extract meaningful keywords or short phrases in the order they appear in the sentence.
2. Copy each keyword exactly as it is written in the sentence.
3. Use "image" for specific objects, products, logos or visual concepts.
4. Use "gif" for humorous, dynamic or action-oriented terms.
5. Use "text" for generic phrases, numbers or descriptive terms.
6. Number order_id from 1 in sentence order.
7. Each keyword appears once with a single type.

Respond with JSON only:
{"keywords": [{"order_id": 1, "type": "image", "keyword": "example"}]}`
