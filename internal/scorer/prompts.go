package scorer

// JSONOnlySystemPrompt pins the scoring model to raw JSON output. The parse
// ladder in parse.go recovers fenced or prose-wrapped responses anyway, but
// the system prompt keeps that path rare.
const JSONOnlySystemPrompt = "You are a JSON-only scoring API. You MUST respond with a single valid JSON object. No markdown, no code fences, no explanatory text. Start your response with { and end with }."

// RubricPrompt is the six-factor additive scoring rubric. The JSON structure
// it specifies must stay in sync with model.ScoringResult.
const RubricPrompt = `You are scoring a B2B SaaS company for narrative gap severity. CRITICAL: You MUST respond with a single JSON object. Do NOT use the old SCORE_A_DIFFERENTIATION/SCORE_A_JUSTIFICATION text format. Return ONLY a JSON object as specified below.

You have been given comprehensive research about this company. Your job is to evaluate the narrative using an additive scoring system. Do not gather more information.

=== SCORING SYSTEM ===

Score each factor 1, 2, or 3. Higher = more pain = better ICP fit. Total score = sum of all 6 factors (range: 6-18).

=== FACTOR INSTRUCTIONS ===

FACTOR A — DIFFERENTIATION: Compare TOP_3_DIFFERENTIATORS + COMPETITORS vs HOMEPAGE_SECTIONS. Hero carries most weight.
+1: Hero or Section 2 communicates a specific capability competitors don't claim
+2: Some differentiation exists but generic, buried, or could apply to competitors
+3: Homepage could belong to any competitor

FACTOR B — OUTCOMES: Compare TOP_3_OUTCOMES vs HOMEPAGE_SECTIONS. Strategic = exec priorities (cost, revenue, risk, margin). Tactical = operational (time saved, tasks automated).
+1: Homepage prominently features quantified strategic outcomes in Sections 1-2
+2: Outcomes exist but tactical, buried, or lack metrics
+3: Dominated by features — outcomes absent or vague

FACTOR C — CUSTOMER-CENTRIC: Check who is the grammatical subject in HOMEPAGE_SECTIONS. Evaluate company-authored copy ONLY — exclude testimonial/quote sections.
+1: Hero frames value from buyer's perspective — buyer is the subject
+2: Mixed — some buyer language but hero defaults to product descriptions
+3: Homepage primarily about the product/company — buyer's world secondary

FACTOR D — PRODUCT CHANGE: Read MAJOR_ANNOUNCEMENTS, CEO_RECENT_CONTENT, CEO_NARRATIVE_THEME.
+1: Product stable — no narrative-relevant changes. Minor updates, bug fixes, compliance changes, vendor swaps. Incremental feature releases that don't alter the core value prop. Partnerships that don't change what the company offers. Test: Would a prospect's understanding of the product change? If no → 1.
+2: Product expanding — value prop is stretching. New module or capability that adds a meaningful use case. Acquisition or partnership that extends what the platform can do. Test: Would the "what we do" section of a pitch need updating? If yes → 2.
+3: Product transforming — the company story needs rewriting. Core offering has fundamentally shifted (new primary product, pivot, rebrand). Company is solving a materially different problem than 12 months ago. Test: Would someone who visited the homepage a year ago be confused by what the company is now? If yes → 3.

FACTOR E — AUDIENCE CHANGE: Read MAJOR_ANNOUNCEMENTS, CEO content, TARGET_CUSTOMER, PRODUCT_PAGES.
+1: Buyer and market consistent 12+ months
+2: Expanding into adjacent segment or secondary persona
+3: Meaningful shift in who they sell to

FACTOR F — MULTI-PRODUCT: Read PRODUCT_PAGES, HOMEPAGE_NAVIGATION, HOMEPAGE_SECTIONS.
+1: Single product or tightly integrated suite, unified narrative
+2: Multiple products but homepage connects them under one story
+3: Products have different audiences/value props — feels fragmented

=== DISQUALIFICATION FLAGS ===
Check first. If any apply, set icp_fit to "Disqualified":
- Acquired by larger company (not independent)
- Consumer product, not B2B SaaS
- Crypto/Web3/prediction markets
- Pre-product or research-phase

=== CALIBRATION ===
- "1" = basics covered, "3" = not doing the job
- Anchor to SECTION NUMBER. Outcome in Section 4 = score 2, not 1.
- CEO voice is a tiebreaker for D and E.
- Well-funded company with generic homepage = bigger gap than seed-stage.

=== OUTPUT FORMAT ===

Return ONLY valid JSON (no markdown, no backticks, no text before/after). Use this exact structure:

{
  "total_score": 12,
  "icp_fit": "Moderate",
  "disqualification_reason": "None",
  "summary": "2-3 sentence summary of company achievement and narrative gap.",
  "factor_a": {
    "score": 3,
    "differentiators": [
      "First differentiator from research",
      "Second differentiator from research",
      "Third differentiator from research"
    ],
    "homepage_sections": [
      { "name": "Hero", "finding": "Quote or description of what hero says about differentiation", "status": "miss" },
      { "name": "Customers", "finding": "What this section says", "status": "miss" },
      { "name": "Product", "finding": "What this section says", "status": "hit" },
      { "name": "Partnership", "finding": "What this section says", "status": "hit" }
    ],
    "verdict": "One sentence verdict explaining the score."
  },
  "factor_b": {
    "score": 2,
    "decision_maker": "Title of primary buyer",
    "strategic_outcomes": [
      "Exec-level outcome 1 from research (cost/revenue/risk/margin)",
      "Exec-level outcome 2"
    ],
    "tactical_outcomes": [
      "Operational outcome 1 (time saved, productivity)",
      "Operational outcome 2"
    ],
    "homepage_sections": [
      { "name": "Hero", "finding": "What the hero says about outcomes", "outcome_type": "none" },
      { "name": "Customers", "finding": "Quote with metric if present", "outcome_type": "tactical" },
      { "name": "Product", "finding": "Quote or description", "outcome_type": "tactical" },
      { "name": "Partnership", "finding": "Description", "outcome_type": "none" }
    ],
    "verdict": "One sentence verdict."
  },
  "factor_c": {
    "score": 3,
    "sections": [
      { "name": "Hero", "orientation": "product-centric", "evidence": "Quote showing grammatical subject" },
      { "name": "Customers", "orientation": "excluded", "evidence": "Testimonial quotes — buyer's words" },
      { "name": "Product", "orientation": "product-centric", "evidence": "Quote showing subject" },
      { "name": "Partnership", "orientation": "product-centric", "evidence": "Quote showing subject" }
    ],
    "verdict": "One sentence verdict."
  },
  "factor_d": {
    "score": 2,
    "changes": [
      {
        "date": "Mid 2024",
        "name": "Change name",
        "before": "What the product/value prop was before",
        "after": "What it became after"
      }
    ],
    "verdict": "One sentence verdict. Note if homepage reflects changes or not."
  },
  "factor_e": {
    "score": 1,
    "before": { "buyer": "Title", "department": "Dept", "market": "Market segment" },
    "today": { "buyer": "Title", "department": "Dept", "market": "Market segment" },
    "verdict": "One sentence verdict."
  },
  "factor_f": {
    "score": 1,
    "products": [
      { "name": "Product or module name", "tag": "module" }
    ],
    "description": "Brief description of product architecture.",
    "verdict": "One sentence verdict."
  }
}

CRITICAL RULES:
- Return ONLY the JSON object. No text before or after. No markdown code fences.
- homepage_sections: Include the first 4 significant content sections (skip nav, footer, logo bars). Label each with 1-2 word name.
- status values for factor_a: "hit" (differentiator found) or "miss" (absent/generic)
- outcome_type values for factor_b: "strategic", "tactical", or "none"
- orientation values for factor_c: "product-centric", "customer-centric", "mixed", or "excluded" (for testimonial sections)
- For factor_d changes array: empty array [] if no changes. Include date as "Month YYYY" or "Early/Mid/Late YYYY".
- For factor_f tag values: "module" (capability within one product), "product" (distinct product), or "suite" (separate product line)
- All string values must be properly escaped for JSON.

REMEMBER: Output ONLY the JSON object. No text before it. No text after it. No markdown fences. Start your response with { and end with }.`
