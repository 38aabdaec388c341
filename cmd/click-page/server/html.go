package server

// HTMLPage is the page under test. Clicking #testButton records whether the
// click carried the Shift modifier in #result.
const HTMLPage = `<!DOCTYPE html>
<html>
<head>
    <title>Shift+Click Test Page</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 600px;
            margin: 50px auto;
            padding: 20px;
        }
        #testButton {
            background: #4285f4;
            color: white;
            border: none;
            padding: 12px 24px;
            border-radius: 4px;
            font-size: 16px;
            user-select: none;
        }
        #result {
            margin-top: 20px;
            padding: 15px;
            min-height: 1.2em;
            border-radius: 4px;
        }
        #result[data-click-type="shift-click"] { background: #d4edda; color: #155724; }
        #result[data-click-type="normal-click"] { background: #e2e3e5; color: #383d41; }
    </style>
</head>
<body>
    <h1>Shift+Click Test</h1>
    <button id="testButton" type="button">Click me</button>
    <div id="result"></div>
    <ul id="log"></ul>

    <script>
        const button = document.getElementById('testButton');
        const result = document.getElementById('result');
        const log = document.getElementById('log');

        // Shift+click on a button selects text in some engines.
        button.addEventListener('mousedown', (e) => {
            if (e.shiftKey) {
                e.preventDefault();
            }
        });

        button.addEventListener('click', (e) => {
            if (e.shiftKey) {
                result.setAttribute('data-click-type', 'shift-click');
                result.textContent = 'Shift+Click detected!';
            } else {
                result.setAttribute('data-click-type', 'normal-click');
                result.textContent = 'Normal click detected';
            }

            const item = document.createElement('li');
            item.textContent = result.getAttribute('data-click-type') +
                ' shift=' + e.shiftKey + ' ctrl=' + e.ctrlKey +
                ' alt=' + e.altKey + ' meta=' + e.metaKey;
            log.appendChild(item);
        });
    </script>
</body>
</html>
`
